package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExporter renders a Summary into CSV bytes, one row per answer.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the summary.
func (e *CSVExporter) Render(summary Summary) ([]byte, error) {
	if len(summary.Entries) == 0 {
		return nil, fmt.Errorf("csv requires at least one answer")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"question", "kind", "answer", "files"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range summary.Entries {
		record := []string{
			entry.Prompt,
			entry.Kind,
			entry.Value,
			strings.Join(entry.Files, "; "),
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
