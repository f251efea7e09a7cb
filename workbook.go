package excelstream

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
)

// Workbook streams an XLSX archive to a sink. It owns the ZIP writer, the
// shared-string table and a single reusable row buffer, so peak memory does
// not grow with the number of rows written. A workbook is not safe for
// concurrent use; one goroutine owns it from NewWorkbook to Close.
type Workbook struct {
	sink   Sink
	config *Config

	zip    *zipWriter
	sst    *sharedStrings
	refs   *cellRefCache
	rowBuf *bytebufferpool.ByteBuffer

	sheets []*sheetState
	active *sheetState

	err       error // first fatal error; latched
	closed    bool
	totalRows int64
	startTime time.Time
}

// NewWorkbook creates a workbook writing to sink with the given optional
// config. The sink is owned by the workbook until Close.
func NewWorkbook(sink Sink, config ...*Config) (*Workbook, error) {
	cfg := DefaultConfig()
	if len(config) > 0 && config[0] != nil {
		cfg = config[0]
	}
	if cfg.CompressionLevel < 0 || cfg.CompressionLevel > 9 {
		return nil, fmt.Errorf("%w: compression level %d outside 0..9", ErrInvalidValue, cfg.CompressionLevel)
	}
	if cfg.InlineStringThreshold < 0 {
		return nil, fmt.Errorf("%w: inline string threshold must not be negative", ErrInvalidValue)
	}
	if cfg.MaxUniqueStrings < 0 {
		return nil, fmt.Errorf("%w: max unique strings must not be negative", ErrInvalidValue)
	}

	rowBuf := bytebufferpool.Get()
	if cap(rowBuf.B) < cfg.RowBufferCapacity {
		rowBuf.B = make([]byte, 0, cfg.RowBufferCapacity)
	}

	return &Workbook{
		sink:      sink,
		config:    cfg,
		zip:       newZipWriter(sink, cfg.CompressionLevel),
		sst:       newSharedStrings(cfg.InlineStringThreshold, cfg.MaxUniqueStrings),
		refs:      newCellRefCache(),
		rowBuf:    rowBuf,
		startTime: time.Now(),
	}, nil
}

// AddSheet closes the sheet currently open, if any, and starts a new
// worksheet part. Rows written afterwards go to the new sheet.
func (w *Workbook) AddSheet(name string) error {
	if err := w.usable(); err != nil {
		return err
	}
	if err := validateSheetName(name); err != nil {
		return err
	}

	if w.active != nil {
		if err := w.active.close(w.zip); err != nil {
			return w.fatal(err)
		}
		w.active = nil
	}

	sheet := &sheetState{name: name, id: len(w.sheets) + 1}
	entry := fmt.Sprintf("xl/worksheets/sheet%d.xml", sheet.id)
	if err := w.zip.beginEntry(entry); err != nil {
		return w.fatal(err)
	}
	if err := w.zip.write([]byte(worksheetHeader)); err != nil {
		return w.fatal(err)
	}

	w.sheets = append(w.sheets, sheet)
	w.active = sheet
	return nil
}

// WriteRow appends a row of string cells to the active sheet. Each value is
// routed through the hybrid shared-string policy; empty strings become
// omitted cells.
func (w *Workbook) WriteRow(values []string) error {
	if err := w.beginRowWrite(len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: cell text is not valid UTF-8", ErrInvalidValue)
		}
	}

	w.openRowElement()
	for col, v := range values {
		if v == "" {
			continue
		}
		w.appendStringCell(col+1, v, 0)
	}
	return w.flushRowElement()
}

// WriteRowTyped appends a row of typed cells with the default style.
func (w *Workbook) WriteRowTyped(cells []Cell) error {
	if err := w.beginRowWrite(len(cells)); err != nil {
		return err
	}
	for i := range cells {
		if err := validateCell(&cells[i]); err != nil {
			return err
		}
	}

	w.openRowElement()
	for col, c := range cells {
		w.appendTypedCell(col+1, c, 0)
	}
	return w.flushRowElement()
}

// WriteRowStyled appends a row of typed cells carrying style indices.
func (w *Workbook) WriteRowStyled(cells []StyledCell) error {
	if err := w.beginRowWrite(len(cells)); err != nil {
		return err
	}
	for i := range cells {
		if !cells[i].Style.valid() {
			return fmt.Errorf("%w: style index %d outside the catalog", ErrInvalidValue, cells[i].Style)
		}
		if err := validateCell(&cells[i].Cell); err != nil {
			return err
		}
	}

	w.openRowElement()
	for col, c := range cells {
		w.appendTypedCell(col+1, c.Cell, c.Style.Index())
	}
	return w.flushRowElement()
}

// SetColumnWidth records a column width for the active sheet. Valid only
// before the sheet's first row.
func (w *Workbook) SetColumnWidth(col int, width float64) error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.active == nil {
		return fmt.Errorf("%w: no active sheet", ErrInvalidOperation)
	}
	return w.active.setColumnWidth(col, width)
}

// SetNextRowHeight sets the height in points for the next row written; the
// setting is consumed by that one row.
func (w *Workbook) SetNextRowHeight(height float64) error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.active == nil {
		return fmt.Errorf("%w: no active sheet", ErrInvalidOperation)
	}
	if height <= 0 {
		return fmt.Errorf("%w: row height %v must be positive", ErrInvalidValue, height)
	}
	w.active.nextRowHeight = height
	w.active.hasRowHeight = true
	return nil
}

// MergeCells records an A1:B2-style merged range on the active sheet; the
// ranges are emitted when the sheet closes.
func (w *Workbook) MergeCells(ref string) error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.active == nil {
		return fmt.Errorf("%w: no active sheet", ErrInvalidOperation)
	}
	if ref == "" {
		return fmt.Errorf("%w: empty merge range", ErrInvalidValue)
	}
	w.active.merges = append(w.active.merges, ref)
	return nil
}

// ProtectSheet records a protection directive on the active sheet. Valid
// only before the sheet's first row.
func (w *Workbook) ProtectSheet(opts ProtectionOptions) error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.active == nil {
		return fmt.Errorf("%w: no active sheet", ErrInvalidOperation)
	}
	return w.active.setProtection(opts)
}

// Close finishes the active sheet, emits the remaining workbook parts,
// completes the ZIP archive and closes the sink. A workbook with no sheets
// cannot be closed. After a successful Close the workbook is spent.
func (w *Workbook) Close() (*Stats, error) {
	if err := w.usable(); err != nil {
		return nil, err
	}
	if len(w.sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidOperation)
	}

	if w.active != nil {
		if err := w.active.close(w.zip); err != nil {
			return nil, w.fatal(err)
		}
		w.active = nil
	}

	if err := w.sst.writeXML(w.zip); err != nil {
		return nil, w.fatal(err)
	}

	sheetNames := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		sheetNames[i] = s.name
	}
	parts := []struct {
		name    string
		content string
	}{
		{"xl/styles.xml", stylesXML},
		{"xl/workbook.xml", generateWorkbook(sheetNames)},
		{"xl/_rels/workbook.xml.rels", generateWorkbookRels(len(w.sheets))},
		{"_rels/.rels", relsXML},
		{"docProps/core.xml", corePropsXML},
		{"docProps/app.xml", appPropsXML},
		{"[Content_Types].xml", generateContentTypes(len(w.sheets))},
	}
	for _, p := range parts {
		if err := w.zip.beginEntry(p.name); err != nil {
			return nil, w.fatal(err)
		}
		if err := w.zip.write([]byte(p.content)); err != nil {
			return nil, w.fatal(err)
		}
	}

	if err := w.zip.finish(); err != nil {
		return nil, w.fatal(err)
	}
	if err := w.sink.Close(); err != nil {
		return nil, w.fatal(fmt.Errorf("failed to close sink: %w", err))
	}

	w.closed = true
	bytebufferpool.Put(w.rowBuf)
	w.rowBuf = nil

	duration := time.Since(w.startTime).Seconds()
	stats := &Stats{
		TotalRows:     w.totalRows,
		TotalSheets:   len(w.sheets),
		UniqueStrings: w.sst.uniqueCount(),
		BytesWritten:  int64(w.zip.offset),
		Duration:      duration,
	}
	if duration > 0 {
		stats.RowsPerSecond = float64(stats.TotalRows) / duration
	}
	return stats, nil
}

// usable rejects calls on a closed or failed workbook.
func (w *Workbook) usable() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return fmt.Errorf("%w: workbook already closed", ErrInvalidOperation)
	}
	return nil
}

// fatal latches the first write failure; every later call fails with it.
func (w *Workbook) fatal(err error) error {
	if w.err == nil {
		w.err = err
	}
	return err
}

// beginRowWrite runs the shared row preconditions and opens sheetData if
// this is the sheet's first row.
func (w *Workbook) beginRowWrite(cols int) error {
	if err := w.usable(); err != nil {
		return err
	}
	sheet := w.active
	if sheet == nil {
		return fmt.Errorf("%w: no active sheet", ErrInvalidOperation)
	}
	if sheet.currentRow >= MaxRows {
		return fmt.Errorf("%w: sheet %q is full at %d rows", ErrInvalidValue, sheet.name, MaxRows)
	}
	if cols > MaxColumns {
		return fmt.Errorf("%w: %d cells exceed the %d column limit", ErrInvalidValue, cols, MaxColumns)
	}
	if err := sheet.beginRow(w.zip); err != nil {
		return w.fatal(w.rowError(err))
	}
	return nil
}

// openRowElement starts the row element in the reusable buffer, consuming a
// pending row-height override.
func (w *Workbook) openRowElement() {
	sheet := w.active
	sheet.currentRow++

	w.rowBuf.Reset()
	buf := w.rowBuf.B
	buf = append(buf, `<row r="`...)
	buf = strconv.AppendInt(buf, int64(sheet.currentRow), 10)
	buf = append(buf, '"')
	if sheet.hasRowHeight {
		buf = append(buf, ` ht="`...)
		buf = strconv.AppendFloat(buf, sheet.nextRowHeight, 'f', -1, 64)
		buf = append(buf, `" customHeight="1"`...)
		sheet.hasRowHeight = false
	}
	buf = append(buf, '>')
	w.rowBuf.B = buf
}

// flushRowElement closes the row element and hands the buffer to the ZIP
// writer.
func (w *Workbook) flushRowElement() error {
	w.rowBuf.B = append(w.rowBuf.B, `</row>`...)
	if err := w.zip.write(w.rowBuf.B); err != nil {
		// The row counter already advanced; the row it names is the one
		// that failed.
		return w.fatal(w.rowError(err))
	}
	w.totalRows++
	return nil
}

// rowError wraps a fatal failure with the sheet and row being encoded.
func (w *Workbook) rowError(err error) error {
	return &WriteRowError{Sheet: w.active.name, Row: w.active.currentRow, Err: err}
}

// appendStringCell emits one textual cell, routed through the hybrid
// shared-string policy.
func (w *Workbook) appendStringCell(col int, s string, style uint32) {
	buf := w.openCell(col, style)
	route, idx := w.sst.route(s)
	if route == routeShared {
		buf = append(buf, ` t="s"><v>`...)
		buf = strconv.AppendInt(buf, int64(idx), 10)
		buf = append(buf, `</v></c>`...)
	} else {
		buf = append(buf, ` t="inlineStr"><is><t xml:space="preserve">`...)
		buf = appendEscaped(buf, s)
		buf = append(buf, `</t></is></c>`...)
	}
	w.rowBuf.B = buf
}

// appendTypedCell emits one typed cell into the row buffer.
func (w *Workbook) appendTypedCell(col int, c Cell, style uint32) {
	if c.Type == TypeEmpty {
		return
	}
	if c.Type == TypeString {
		w.appendStringCell(col, c.Str, style)
		return
	}

	buf := w.openCell(col, style)
	switch c.Type {
	case TypeInt:
		buf = append(buf, `><v>`...)
		buf = strconv.AppendInt(buf, c.Int, 10)
		buf = append(buf, `</v></c>`...)
	case TypeFloat, TypeDateTime:
		buf = append(buf, `><v>`...)
		buf = strconv.AppendFloat(buf, c.Float, 'g', -1, 64)
		buf = append(buf, `</v></c>`...)
	case TypeBool:
		buf = append(buf, ` t="b"><v>`...)
		if c.Bool {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
		buf = append(buf, `</v></c>`...)
	case TypeError:
		buf = append(buf, ` t="e"><v>`...)
		buf = appendEscaped(buf, c.Str)
		buf = append(buf, `</v></c>`...)
	case TypeFormula:
		buf = append(buf, `><f>`...)
		buf = appendEscaped(buf, c.Str)
		buf = append(buf, `</f></c>`...)
	}
	w.rowBuf.B = buf
}

// openCell writes the common cell opening: reference plus optional style.
// The returned slice is left inside the c start tag.
func (w *Workbook) openCell(col int, style uint32) []byte {
	buf := w.rowBuf.B
	buf = append(buf, `<c r="`...)
	buf = w.refs.appendRef(buf, col, w.active.currentRow)
	buf = append(buf, '"')
	if style > 0 {
		buf = append(buf, ` s="`...)
		buf = strconv.AppendInt(buf, int64(style), 10)
		buf = append(buf, '"')
	}
	return buf
}

// validateCell rejects values the format cannot carry.
func validateCell(c *Cell) error {
	switch c.Type {
	case TypeString, TypeError, TypeFormula:
		if !utf8.ValidString(c.Str) {
			return fmt.Errorf("%w: cell text is not valid UTF-8", ErrInvalidValue)
		}
	}
	return nil
}
