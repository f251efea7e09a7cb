package excelstream

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// stringRoute is the verdict of the hybrid routing policy for one textual
// value.
type stringRoute uint8

const (
	// routeShared references the string by shared-string-table index.
	routeShared stringRoute = iota
	// routeInline embeds the string in the cell as t="inlineStr".
	routeInline
)

// routeString decides how a textual value is emitted. It is a pure function
// of the value and the table's current occupancy:
//
//   - strings longer than the inline threshold are emitted inline and never
//     enter the table (long strings are rarely repeated, so deduplication
//     would only grow the table),
//   - once the table holds maxUnique distinct strings, misses are emitted
//     inline while hits keep resolving to their existing index (bounds
//     memory on adversarial input).
func routeString(s string, threshold int, known bool, size, maxUnique int) stringRoute {
	if len(s) > threshold {
		return routeInline
	}
	if !known && size >= maxUnique {
		return routeInline
	}
	return routeShared
}

// sharedStrings deduplicates short textual cell values. Indices are dense
// from 0 in insertion order, which makes the emitted sharedStrings.xml
// deterministic for a given input sequence.
type sharedStrings struct {
	index     map[string]int
	list      []string
	threshold int
	maxUnique int
}

func newSharedStrings(threshold, maxUnique int) *sharedStrings {
	return &sharedStrings{
		index:     make(map[string]int, 1024),
		list:      make([]string, 0, 1024),
		threshold: threshold,
		maxUnique: maxUnique,
	}
}

// route applies the hybrid policy to s. When the verdict is routeShared the
// returned index is valid and s is inserted if it was not already present.
func (t *sharedStrings) route(s string) (stringRoute, int) {
	idx, known := t.index[s]
	switch routeString(s, t.threshold, known, len(t.list), t.maxUnique) {
	case routeInline:
		return routeInline, 0
	default:
		if !known {
			idx = len(t.list)
			t.index[s] = idx
			t.list = append(t.list, s)
		}
		return routeShared, idx
	}
}

// uniqueCount returns the number of distinct strings held.
func (t *sharedStrings) uniqueCount() int { return len(t.list) }

// writeXML emits xl/sharedStrings.xml through the given ZIP writer. The
// count attribute is set equal to uniqueCount; consumers accept either a
// reference tally or the unique total there.
func (t *sharedStrings) writeXML(zw *zipWriter) error {
	if err := zw.beginEntry("xl/sharedStrings.xml"); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = append(buf.B, xmlDeclaration...)
	buf.B = append(buf.B, `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="`...)
	buf.B = strconv.AppendInt(buf.B, int64(len(t.list)), 10)
	buf.B = append(buf.B, `" uniqueCount="`...)
	buf.B = strconv.AppendInt(buf.B, int64(len(t.list)), 10)
	if len(t.list) == 0 {
		buf.B = append(buf.B, `"/>`...)
		return zw.write(buf.B)
	}
	buf.B = append(buf.B, `">`...)
	if err := zw.write(buf.B); err != nil {
		return err
	}

	for _, s := range t.list {
		buf.Reset()
		buf.B = append(buf.B, `<si><t xml:space="preserve">`...)
		buf.B = appendEscaped(buf.B, s)
		buf.B = append(buf.B, `</t></si>`...)
		if err := zw.write(buf.B); err != nil {
			return err
		}
	}

	return zw.write([]byte(`</sst>`))
}
