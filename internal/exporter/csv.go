package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"salescope/internal/analysis"
	apierrors "salescope/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(fullPath string, options WriteOptions) error {
	slog.Info("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	// Ensure directory exists
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apierrors.NewStorageError("failed to create directory", err).WithContext("dir", dir)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return apierrors.NewStorageError("failed to open file", err).WithContext("path", fullPath)
	}
	defer file.Close()

	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write headers if not appending
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteEntities exports the aggregated entities of an analysis result.
// The BOM matters: without it Excel renders the Chinese headers as mojibake.
func (w *CSVWriter) WriteEntities(fullPath string, result *analysis.Result) error {
	headers, records := entityRecords(result)
	return w.WriteCSV(fullPath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteEntitiesTo streams the entity table as CSV, BOM included.
func (w *CSVWriter) WriteEntitiesTo(out io.Writer, result *analysis.Result) error {
	if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(out)
	headers, records := entityRecords(result)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func entityRecords(result *analysis.Result) (headers []string, records [][]string) {
	headers = []string{"名称", "销量(吨)", "销售金额(万元)", "毛利(万元)", "吨毛利(元/吨)", "毛利率", "行数", "象限"}
	hasCost := result.Cost != nil
	if hasCost {
		headers = append(headers, "成本(万元)", "成本率")
	}

	records = make([][]string, 0, len(result.Entities))
	for i := range result.Entities {
		e := &result.Entities[i]
		record := []string{
			e.Name,
			formatFloat(e.Quantity),
			formatFloat(e.Amount),
			formatFloat(e.Profit),
			formatFloat(e.ProfitPerUnit),
			formatFloat(e.Margin),
			formatInt(int64(e.RowCount)),
			formatInt(int64(e.Quadrant)),
		}
		if hasCost {
			record = append(record, formatFloat(e.Cost), formatFloat(e.CostRate))
		}
		records = append(records, record)
	}
	return headers, records
}
