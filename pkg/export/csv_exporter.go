package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is the tabular content of a schedule download. Rows are keyed by
// header so callers can build them out of order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders a Dataset into CSV bytes.
type CSVExporter struct {
	// WithBOM prepends a UTF-8 byte order mark so spreadsheet apps pick
	// the right encoding when admins open the download directly.
	WithBOM bool
}

// NewCSVExporter builds a CSV exporter. The BOM is on by default because the
// console's users open these files in desktop spreadsheet apps.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{WithBOM: true}
}

// Render encodes the dataset. The title is intentionally omitted from CSV
// output so the file stays machine-readable.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	if e.WithBOM {
		buf.WriteString("\xef\xbb\xbf")
	}

	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
