package excelstream

import (
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflater compresses one ZIP entry's payload while accumulating the CRC-32
// and byte counts that the entry's data descriptor needs. Level 0 still uses
// deflate framing (stored blocks) so every entry shares one code path.
type deflater struct {
	enc          *flate.Writer
	crc          uint32
	uncompressed uint64
}

func newDeflater(w io.Writer, level int) (*deflater, error) {
	enc, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, err
	}
	return &deflater{enc: enc}, nil
}

// write compresses p, updating the running CRC-32 and uncompressed count.
// The compressed size is tracked by the counting writer the encoder emits
// into.
func (d *deflater) write(p []byte) error {
	d.crc = crc32.Update(d.crc, crc32.IEEETable, p)
	d.uncompressed += uint64(len(p))
	_, err := d.enc.Write(p)
	return err
}

// close flushes the remaining deflate stream to the underlying writer.
func (d *deflater) close() error {
	return d.enc.Close()
}
