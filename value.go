package excelstream

import (
	"time"
)

// CellType identifies the variant held by a Cell.
type CellType uint8

const (
	// TypeEmpty is an empty cell; it is omitted from the row XML.
	TypeEmpty CellType = iota
	// TypeString is a textual value routed through the shared-string table
	// or emitted inline depending on the routing policy.
	TypeString
	// TypeInt is a 64-bit signed integer.
	TypeInt
	// TypeFloat is a 64-bit IEEE float.
	TypeFloat
	// TypeBool is a boolean.
	TypeBool
	// TypeDateTime is an Excel serial date (days since 1899-12-30).
	TypeDateTime
	// TypeError is an Excel error token such as "#N/A".
	TypeError
	// TypeFormula is a formula; the consumer recalculates the value.
	TypeFormula
)

// Cell is a single typed cell value.
type Cell struct {
	Type  CellType
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{Type: TypeEmpty} }

// String returns a string cell.
func String(s string) Cell { return Cell{Type: TypeString, Str: s} }

// Int returns an integer cell.
func Int(n int64) Cell { return Cell{Type: TypeInt, Int: n} }

// Float returns a float cell.
func Float(f float64) Cell { return Cell{Type: TypeFloat, Float: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{Type: TypeBool, Bool: b} }

// DateTime returns a date-time cell holding the Excel serial number for t.
func DateTime(t time.Time) Cell {
	return Cell{Type: TypeDateTime, Float: TimeToSerial(t)}
}

// DateTimeSerial returns a date-time cell from a precomputed serial number.
func DateTimeSerial(serial float64) Cell {
	return Cell{Type: TypeDateTime, Float: serial}
}

// ErrorValue returns an error cell with the given token (e.g. "#N/A").
func ErrorValue(token string) Cell { return Cell{Type: TypeError, Str: token} }

// Formula returns a formula cell. The formula uses Excel syntax without the
// leading '=' (e.g. "SUM(A1:A10)").
func Formula(expr string) Cell { return Cell{Type: TypeFormula, Str: expr} }

// serialEpoch is the zero point of Excel's 1900 date system. Serial 1 is
// 1900-01-01; the system inherits Lotus 1-2-3's phantom 1900-02-29, which is
// why the epoch sits on 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// TimeToSerial converts t to an Excel serial date number.
func TimeToSerial(t time.Time) float64 {
	return t.UTC().Sub(serialEpoch).Hours() / 24
}

// StyledCell pairs a cell value with a style index from the catalog.
type StyledCell struct {
	Cell  Cell
	Style CellStyle
}

// Styled combines a cell value with a style.
func Styled(c Cell, s CellStyle) StyledCell { return StyledCell{Cell: c, Style: s} }
