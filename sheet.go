package excelstream

import (
	"fmt"
	"strconv"
)

// sheetPhase tracks the streaming state machine of one worksheet part.
type sheetPhase uint8

const (
	// phasePrologue: the worksheet element is open, sheetData not yet
	// started. Column widths and protection may still be recorded.
	phasePrologue sheetPhase = iota
	// phaseRows: sheetData is open and rows are being appended.
	phaseRows
	// phaseClosed: the part is finished; the sheet rejects everything.
	phaseClosed
)

// columnWidth is one recorded col element.
type columnWidth struct {
	col   int // 1-based
	width float64
}

// sheetState is the per-sheet descriptor and encoder state. Exactly one
// sheet is active per workbook between AddSheet and its implicit close.
type sheetState struct {
	name  string
	id    int // 1-based ordinal, matches the part path and relationship id
	phase sheetPhase

	currentRow    int
	nextRowHeight float64
	hasRowHeight  bool

	colWidths  []columnWidth
	merges     []string
	protection *ProtectionOptions
}

// beginRow transitions the sheet into phaseRows, emitting the deferred
// prologue pieces (sheetProtection, cols, sheetData open) on first use.
func (s *sheetState) beginRow(zw *zipWriter) error {
	if s.phase != phasePrologue {
		return nil
	}
	var buf []byte
	if s.protection != nil {
		buf = s.protection.appendXML(buf)
	}
	if len(s.colWidths) > 0 {
		buf = append(buf, `<cols>`...)
		for _, cw := range s.colWidths {
			buf = append(buf, `<col min="`...)
			buf = strconv.AppendInt(buf, int64(cw.col), 10)
			buf = append(buf, `" max="`...)
			buf = strconv.AppendInt(buf, int64(cw.col), 10)
			buf = append(buf, `" width="`...)
			buf = strconv.AppendFloat(buf, cw.width, 'f', -1, 64)
			buf = append(buf, `" customWidth="1"/>`...)
		}
		buf = append(buf, `</cols>`...)
	}
	buf = append(buf, `<sheetData>`...)
	if err := zw.write(buf); err != nil {
		return err
	}
	s.phase = phaseRows
	return nil
}

// close ends the sheetData element, emits merged ranges and finishes the
// worksheet part.
func (s *sheetState) close(zw *zipWriter) error {
	if s.phase == phaseClosed {
		return nil
	}
	// An empty sheet still needs its sheetData element.
	if err := s.beginRow(zw); err != nil {
		return err
	}
	var buf []byte
	buf = append(buf, `</sheetData>`...)
	if len(s.merges) > 0 {
		buf = append(buf, `<mergeCells count="`...)
		buf = strconv.AppendInt(buf, int64(len(s.merges)), 10)
		buf = append(buf, `">`...)
		for _, ref := range s.merges {
			buf = append(buf, `<mergeCell ref="`...)
			buf = appendEscaped(buf, ref)
			buf = append(buf, `"/>`...)
		}
		buf = append(buf, `</mergeCells>`...)
	}
	buf = append(buf, `</worksheet>`...)
	if err := zw.write(buf); err != nil {
		return err
	}
	if err := zw.endEntry(); err != nil {
		return err
	}
	s.phase = phaseClosed
	return nil
}

// setColumnWidth records a col element. Widths must be set before the
// first row because cols precedes sheetData in the part.
func (s *sheetState) setColumnWidth(col int, width float64) error {
	if s.phase != phasePrologue {
		return fmt.Errorf("%w: column widths must be set before the first row", ErrInvalidOperation)
	}
	if col < 1 || col > MaxColumns {
		return fmt.Errorf("%w: column %d out of range 1..%d", ErrInvalidValue, col, MaxColumns)
	}
	if width <= 0 {
		return fmt.Errorf("%w: column width %v must be positive", ErrInvalidValue, width)
	}
	s.colWidths = append(s.colWidths, columnWidth{col: col, width: width})
	return nil
}

// setProtection records the protection directive; like cols it is part of
// the prologue and must precede the first row.
func (s *sheetState) setProtection(opts ProtectionOptions) error {
	if s.phase != phasePrologue {
		return fmt.Errorf("%w: sheet protection must be set before the first row", ErrInvalidOperation)
	}
	s.protection = &opts
	return nil
}
