package excelstream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ZIP format limits honoured by the writer. The targeted scale stays well
// below ZIP64 territory.
const (
	zipMaxEntries   = 65535
	zipMaxEntrySize = 0xFFFFFFFF
)

// zipEntry is the bookkeeping record kept per finished entry for the
// central directory.
type zipEntry struct {
	name             string
	headerOffset     uint64
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
}

// zipWriter emits a ZIP archive to an append-only sink, one entry at a
// time. Local file headers carry general-purpose bit 3, so CRC-32 and sizes
// are written in a data descriptor after each entry's payload instead of
// being patched into the header. The sink is therefore never asked to seek;
// the writer tracks the archive offset itself.
type zipWriter struct {
	sink    io.Writer
	offset  uint64
	level   int
	entries []zipEntry
	current *openZipEntry
}

type openZipEntry struct {
	name         string
	headerOffset uint64
	deflate      *deflater
	counter      *countingWriter
}

// countingWriter forwards compressed bytes to the sink while advancing both
// the entry's compressed size and the archive offset.
type countingWriter struct {
	zw    *zipWriter
	count uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.zw.sink.Write(p)
	c.count += uint64(n)
	c.zw.offset += uint64(n)
	return n, err
}

func newZipWriter(sink io.Writer, level int) *zipWriter {
	return &zipWriter{sink: sink, level: level}
}

// beginEntry finishes any open entry and starts a new one, writing its
// local file header with zeroed CRC and sizes.
func (zw *zipWriter) beginEntry(name string) error {
	if err := zw.endEntry(); err != nil {
		return err
	}
	if len(zw.entries) >= zipMaxEntries {
		return &WriteError{Entry: name, Err: fmt.Errorf("archive full: %d entries", zipMaxEntries)}
	}

	headerOffset := zw.offset

	var hdr [30]byte
	binary.LittleEndian.PutUint32(hdr[0:], 0x04034b50) // local file header signature
	binary.LittleEndian.PutUint16(hdr[4:], 20)         // version needed to extract
	binary.LittleEndian.PutUint16(hdr[6:], 0x0008)     // flags: data descriptor follows
	binary.LittleEndian.PutUint16(hdr[8:], 8)          // method: deflate
	// mod time/date, CRC-32 and sizes stay zero; the descriptor carries them
	binary.LittleEndian.PutUint16(hdr[26:], uint16(len(name)))
	binary.LittleEndian.PutUint16(hdr[28:], 0) // extra field length

	if err := zw.writeRaw(name, hdr[:]); err != nil {
		return err
	}
	if err := zw.writeRaw(name, []byte(name)); err != nil {
		return err
	}

	counter := &countingWriter{zw: zw}
	deflate, err := newDeflater(counter, zw.level)
	if err != nil {
		return &WriteError{Entry: name, Err: err}
	}

	zw.current = &openZipEntry{
		name:         name,
		headerOffset: headerOffset,
		deflate:      deflate,
		counter:      counter,
	}
	return nil
}

// write feeds uncompressed bytes into the active entry's deflate stream.
func (zw *zipWriter) write(p []byte) error {
	if zw.current == nil {
		return fmt.Errorf("%w: no ZIP entry open", ErrInvalidOperation)
	}
	if err := zw.current.deflate.write(p); err != nil {
		return &WriteError{Entry: zw.current.name, Err: err}
	}
	return nil
}

// endEntry flushes the deflate stream, writes the data descriptor and
// records the entry for the central directory. Calling it with no open
// entry is a no-op.
func (zw *zipWriter) endEntry() error {
	entry := zw.current
	if entry == nil {
		return nil
	}
	zw.current = nil

	if err := entry.deflate.close(); err != nil {
		return &WriteError{Entry: entry.name, Err: err}
	}
	if entry.deflate.uncompressed > zipMaxEntrySize || entry.counter.count > zipMaxEntrySize {
		return &WriteError{Entry: entry.name, Err: fmt.Errorf("entry exceeds 4 GiB")}
	}

	var desc [16]byte
	binary.LittleEndian.PutUint32(desc[0:], 0x08074b50) // data descriptor signature
	binary.LittleEndian.PutUint32(desc[4:], entry.deflate.crc)
	binary.LittleEndian.PutUint32(desc[8:], uint32(entry.counter.count))
	binary.LittleEndian.PutUint32(desc[12:], uint32(entry.deflate.uncompressed))
	if err := zw.writeRaw(entry.name, desc[:]); err != nil {
		return err
	}

	zw.entries = append(zw.entries, zipEntry{
		name:             entry.name,
		headerOffset:     entry.headerOffset,
		crc32:            entry.deflate.crc,
		compressedSize:   entry.counter.count,
		uncompressedSize: entry.deflate.uncompressed,
	})
	return nil
}

// finish closes any open entry, writes the central directory and the
// end-of-central-directory record. The archive is complete afterwards.
func (zw *zipWriter) finish() error {
	if err := zw.endEntry(); err != nil {
		return err
	}

	centralDirOffset := zw.offset
	for i := range zw.entries {
		e := &zw.entries[i]
		var hdr [46]byte
		binary.LittleEndian.PutUint32(hdr[0:], 0x02014b50) // central directory signature
		binary.LittleEndian.PutUint16(hdr[4:], 20)         // version made by
		binary.LittleEndian.PutUint16(hdr[6:], 20)         // version needed
		binary.LittleEndian.PutUint16(hdr[8:], 0x0008)     // flags mirror the local header
		binary.LittleEndian.PutUint16(hdr[10:], 8)         // method: deflate
		// mod time/date zero
		binary.LittleEndian.PutUint32(hdr[16:], e.crc32)
		binary.LittleEndian.PutUint32(hdr[20:], uint32(e.compressedSize))
		binary.LittleEndian.PutUint32(hdr[24:], uint32(e.uncompressedSize))
		binary.LittleEndian.PutUint16(hdr[28:], uint16(len(e.name)))
		// extra, comment, disk number, internal and external attributes zero
		binary.LittleEndian.PutUint32(hdr[42:], uint32(e.headerOffset))
		if err := zw.writeRaw(e.name, hdr[:]); err != nil {
			return err
		}
		if err := zw.writeRaw(e.name, []byte(e.name)); err != nil {
			return err
		}
	}
	centralDirSize := zw.offset - centralDirOffset

	var end [22]byte
	binary.LittleEndian.PutUint32(end[0:], 0x06054b50) // end of central directory signature
	binary.LittleEndian.PutUint16(end[8:], uint16(len(zw.entries)))
	binary.LittleEndian.PutUint16(end[10:], uint16(len(zw.entries)))
	binary.LittleEndian.PutUint32(end[12:], uint32(centralDirSize))
	binary.LittleEndian.PutUint32(end[16:], uint32(centralDirOffset))
	return zw.writeRaw("end of central directory", end[:])
}

// writeRaw writes p to the sink uncompressed, advancing the archive offset.
func (zw *zipWriter) writeRaw(entry string, p []byte) error {
	n, err := zw.sink.Write(p)
	zw.offset += uint64(n)
	if err != nil {
		return &WriteError{Entry: entry, Err: err}
	}
	return nil
}
