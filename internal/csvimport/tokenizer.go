// Package csvimport turns published spreadsheet text into catalog entries.
//
// The pipeline is three pure steps: Tokenize splits raw text into rows of
// trimmed fields, ResolveHeaders maps header text to semantic roles through a
// keyword table, and Import normalizes each data row into a shop.Toy. Merging
// the result into existing state is left to the caller (see MergeToys and
// MergeCategories).
//
// WriteCatalog produces the reverse: a CSV snapshot that re-imports to the
// same names, prices and discounts.
package csvimport

import "strings"

// Tokenize splits text into rows of trimmed fields.
//
// Quotes toggle quoted mode; inside quotes a doubled quote is a literal
// quote, and commas and line breaks are ordinary characters. Outside quotes a
// comma ends the field and CR, LF or CRLF ends the row. A line break only
// emits a row when something was collected, so blank lines and trailing
// newlines never produce empty rows. Fields are never type-converted.
func Tokenize(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		if field.Len() == 0 && len(row) == 0 {
			return
		}
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case inQuotes:
			field.WriteByte(c)
		case c == ',':
			endField()
		case c == '\r' || c == '\n':
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	endRow()

	return rows
}
