package excelstream

import (
	"bufio"
	"fmt"
	"os"
)

// defaultFileSinkBuffer is the bufio buffer in front of the file.
const defaultFileSinkBuffer = 64 * 1024

// FileSink writes the archive to a local file through a fixed-size buffer.
type FileSink struct {
	file *os.File
	buf  *bufio.Writer
	path string
}

// NewFileSink creates a sink writing to path, truncating any existing file.
func NewFileSink(path string) (*FileSink, error) {
	return NewFileSinkBuffered(path, defaultFileSinkBuffer)
}

// NewFileSinkBuffered creates a file sink with an explicit buffer size in
// bytes.
func NewFileSinkBuffered(path string, bufferSize int) (*FileSink, error) {
	if bufferSize < 1 {
		return nil, fmt.Errorf("%w: buffer size must be positive", ErrInvalidValue)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return &FileSink{
		file: file,
		buf:  bufio.NewWriterSize(file, bufferSize),
		path: path,
	}, nil
}

// Write implements io.Writer.
func (fs *FileSink) Write(p []byte) (int, error) {
	return fs.buf.Write(p)
}

// Close flushes the buffer and closes the file.
func (fs *FileSink) Close() error {
	if fs.file == nil {
		return nil
	}
	flushErr := fs.buf.Flush()
	closeErr := fs.file.Close()
	fs.file = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", fs.path, flushErr)
	}
	return closeErr
}

// Path returns the file path.
func (fs *FileSink) Path() string {
	return fs.path
}
