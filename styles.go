package excelstream

// CellStyle selects one of the predefined cell formats declared in
// xl/styles.xml. The numeric value is the 0-based cellXfs index written as
// the cell's s attribute.
type CellStyle uint32

const (
	// StyleDefault applies no formatting.
	StyleDefault CellStyle = iota
	// StyleHeaderBold renders bold text, intended for header rows.
	StyleHeaderBold
	// StyleNumberInteger formats numbers as #,##0.
	StyleNumberInteger
	// StyleNumberDecimal formats numbers as #,##0.00.
	StyleNumberDecimal
	// StyleNumberCurrency formats numbers as $#,##0.00.
	StyleNumberCurrency
	// StyleNumberPercentage formats numbers as 0.00%.
	StyleNumberPercentage
	// StyleDateDefault formats date serials as m/d/yyyy.
	StyleDateDefault
	// StyleDateTimestamp formats date serials as m/d/yyyy h:mm.
	StyleDateTimestamp
	// StyleTextBold renders bold text.
	StyleTextBold
	// StyleTextItalic renders italic text.
	StyleTextItalic
	// StyleHighlightYellow fills the cell with solid yellow.
	StyleHighlightYellow
	// StyleHighlightGreen fills the cell with solid green.
	StyleHighlightGreen
	// StyleHighlightRed fills the cell with solid red.
	StyleHighlightRed
	// StyleBorderThin draws thin borders on all four sides.
	StyleBorderThin

	styleCount
)

// Index returns the cellXfs index written to the s attribute.
func (s CellStyle) Index() uint32 { return uint32(s) }

// valid reports whether s names a declared style.
func (s CellStyle) valid() bool { return s < styleCount }

// stylesXML is the fixed style catalog. The cellXfs order must match the
// CellStyle constants above.
const stylesXML = xmlDeclaration + `<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<numFmts count="0"/>
<fonts count="3">
<font><sz val="11"/><name val="Calibri"/></font>
<font><b/><sz val="11"/><name val="Calibri"/></font>
<font><i/><sz val="11"/><name val="Calibri"/></font>
</fonts>
<fills count="5">
<fill><patternFill patternType="none"/></fill>
<fill><patternFill patternType="gray125"/></fill>
<fill><patternFill patternType="solid"><fgColor rgb="FFFFFF00"/></patternFill></fill>
<fill><patternFill patternType="solid"><fgColor rgb="FF00FF00"/></patternFill></fill>
<fill><patternFill patternType="solid"><fgColor rgb="FFFF0000"/></patternFill></fill>
</fills>
<borders count="2">
<border><left/><right/><top/><bottom/><diagonal/></border>
<border><left style="thin"/><right style="thin"/><top style="thin"/><bottom style="thin"/></border>
</borders>
<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>
<cellXfs count="14">
<xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="0" fontId="1" fillId="0" borderId="0" xfId="0" applyFont="1"/>
<xf numFmtId="3" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="4" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="5" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="9" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="14" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="22" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="0" fontId="1" fillId="0" borderId="0" xfId="0" applyFont="1"/>
<xf numFmtId="0" fontId="2" fillId="0" borderId="0" xfId="0" applyFont="1"/>
<xf numFmtId="0" fontId="0" fillId="2" borderId="0" xfId="0" applyFill="1"/>
<xf numFmtId="0" fontId="0" fillId="3" borderId="0" xfId="0" applyFill="1"/>
<xf numFmtId="0" fontId="0" fillId="4" borderId="0" xfId="0" applyFill="1"/>
<xf numFmtId="0" fontId="0" fillId="0" borderId="1" xfId="0" applyBorder="1"/>
</cellXfs>
</styleSheet>`
