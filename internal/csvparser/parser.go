// =============================================================================
// SAP Scripts Generator - CSV Export Reader
// =============================================================================
//
// This module reads a CSV export of a reservation sheet into the same raw
// table the xlsx reader produces, so the normalizer does not care which format
// the user uploaded. It handles the formats spreadsheet exports actually use:
//   - Comma, semicolon, tab or pipe delimiters
//   - UTF-8 (with or without BOM) and Windows-1252 / ISO-8859-1 encodings
//   - Quoted fields and ragged rows
//
// The column layout is still the fixed positional schema of the sheet; this
// reader does not interpret headers. Cells are kept as exported, spaces
// included, like the xlsx reader.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings contains settings for reading a CSV export.
type Settings struct {
	// Delimiter is the field separator. Accepts ",", ";", "|", "tab" or "\t".
	// Default: "," unless the first line suggests ";".
	Delimiter string

	// Encoding is the character encoding of the export.
	// Valid values: "UTF-8", "Windows-1252", "ISO-8859-1". Default: "UTF-8".
	Encoding string

	// Sheet is recorded on the raw table so errors can name the section.
	Sheet string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Read parses a CSV export into a raw table.
//
// PARAMETERS:
//   - r: The CSV bytes.
//   - settings: Delimiter and encoding of the export.
//
// RETURNS:
//   - The raw rows, header row included.
//   - An error if the stream cannot be decoded or parsed.
func Read(r io.Reader, settings Settings) (*types.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if decoder != nil {
		reader = transform.NewReader(reader, decoder.NewDecoder())
	}

	buffered := bufio.NewReader(reader)
	csvReader := csv.NewReader(buffered)
	csvReader.Comma = resolveDelimiter(settings.Delimiter, data)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	table := &types.RawTable{
		Sheet: settings.Sheet,
		Rows:  make([][]string, 0, len(allRows)),
	}
	for _, row := range allRows {
		table.Rows = append(table.Rows, trimTrailingEmpty(row))
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// decoderFor returns the decoder for a named encoding, nil for UTF-8.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported CSV encoding: %s", name)
	}
}

// resolveDelimiter maps the configured delimiter to a rune. When none is
// configured, a first line with more semicolons than commas selects ';'
// (the default of spreadsheet exports in es-PE locales).
func resolveDelimiter(delimiter string, data []byte) rune {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case ",", "comma":
		return ','
	}

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

// trimTrailingEmpty drops trailing empty cells so CSV rows match the shape
// excelize returns for the same sheet.
func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
