package excelstream

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// xmlDeclaration opens every emitted part.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Fixed OOXML parts and part fragments.
const (
	relsXML = xmlDeclaration + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

	corePropsXML = xmlDeclaration + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:creator>excelstream</dc:creator>
</cp:coreProperties>`

	appPropsXML = xmlDeclaration + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Application>excelstream</Application>
</Properties>`

	worksheetHeader = xmlDeclaration + `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`

	contentTypesHeader = xmlDeclaration + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>
<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`
)

// generateContentTypes renders [Content_Types].xml with one worksheet
// override per sheet.
func generateContentTypes(sheetCount int) string {
	var b strings.Builder
	b.WriteString(contentTypesHeader)
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&b, "\n<Override PartName=\"/xl/worksheets/sheet%d.xml\" ContentType=\"application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml\"/>", i)
	}
	b.WriteString("\n</Types>")
	return b.String()
}

// generateWorkbook renders xl/workbook.xml. Sheet ids and relationship ids
// both follow the 1-based sheet ordinal.
func generateWorkbook(sheetNames []string) string {
	var b strings.Builder
	b.WriteString(xmlDeclaration)
	b.WriteString(`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` + "\n<sheets>")
	for i, name := range sheetNames {
		fmt.Fprintf(&b, "\n<sheet name=\"%s\" sheetId=\"%d\" r:id=\"rId%d\"/>", string(appendEscaped(nil, name)), i+1, i+1)
	}
	b.WriteString("\n</sheets>\n</workbook>")
	return b.String()
}

// generateWorkbookRels renders xl/_rels/workbook.xml.rels: one relationship
// per sheet, then styles and shared strings at the next two ids.
func generateWorkbookRels(sheetCount int) string {
	var b strings.Builder
	b.WriteString(xmlDeclaration)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&b, "\n<Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet\" Target=\"worksheets/sheet%d.xml\"/>", i, i)
	}
	fmt.Fprintf(&b, "\n<Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles\" Target=\"styles.xml\"/>", sheetCount+1)
	fmt.Fprintf(&b, "\n<Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings\" Target=\"sharedStrings.xml\"/>", sheetCount+2)
	b.WriteString("\n</Relationships>")
	return b.String()
}

// appendEscaped appends s to buf with the five predefined XML entities
// escaped. Input is assumed to be valid UTF-8; callers validate beforehand.
func appendEscaped(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			buf = append(buf, "&amp;"...)
		case '<':
			buf = append(buf, "&lt;"...)
		case '>':
			buf = append(buf, "&gt;"...)
		case '"':
			buf = append(buf, "&quot;"...)
		case '\'':
			buf = append(buf, "&apos;"...)
		default:
			buf = append(buf, s[i])
		}
	}
	return buf
}

// invalidSheetNameChars are rejected in sheet names by the spreadsheet
// format.
const invalidSheetNameChars = `:\/?*[]`

// validateSheetName enforces the format's naming rules: non-empty, at most
// 31 characters, none of the forbidden characters.
func validateSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: sheet name is empty", ErrInvalidOperation)
	}
	if utf8.RuneCountInString(name) > 31 {
		return fmt.Errorf("%w: sheet name %q exceeds 31 characters", ErrInvalidOperation, name)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: sheet name is not valid UTF-8", ErrInvalidOperation)
	}
	if strings.ContainsAny(name, invalidSheetNameChars) {
		return fmt.Errorf("%w: sheet name %q contains one of %s", ErrInvalidOperation, name, invalidSheetNameChars)
	}
	return nil
}
