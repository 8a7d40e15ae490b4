// Package sheets reads uploaded spreadsheets into tables. Excel
// workbooks are read through excelize, CSV files through encoding/csv.
// All cell values arrive as strings; numeric coercion happens later at
// aggregation time so a stray text cell never aborts the read.
package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "salescope/internal/errors"
	"salescope/internal/table"
)

// Info describes one worksheet of an uploaded file.
type Info struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// SupportedExtension reports whether the file extension is one the
// reader can parse.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// List returns the worksheets of a file. A CSV file always reports a
// single pseudo-sheet.
func List(path string) ([]Info, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		t, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return []Info{{Name: "Sheet1", Rows: len(t.Rows), Columns: len(t.Columns)}}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	var infos []Info
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", name), err)
		}

		info := Info{Name: name, Rows: len(rows)}
		for _, row := range rows {
			if len(row) > info.Columns {
				info.Columns = len(row)
			}
		}
		infos = append(infos, info)
	}

	if len(infos) == 0 {
		return nil, apierrors.NewParsingError("workbook contains no sheets", nil)
	}
	return infos, nil
}

// Read parses one worksheet into a table. An empty sheet name selects
// the first sheet. The header is the first row with any non-empty
// cell; everything below it becomes data rows.
func Read(path, sheet string) (*table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, apierrors.NewParsingError("workbook contains no sheets", nil)
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	return fromRows(rows)
}

func readCSV(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open csv file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError("failed to parse csv", err)
		}
		rows = append(rows, record)
	}

	return fromRows(rows)
}

// fromRows converts raw string rows into a table, locating the header
// row and cleaning column names.
func fromRows(rows [][]string) (*table.Table, error) {
	headerIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil, apierrors.NewParsingError("sheet contains no data", nil)
	}

	header := rows[headerIdx]
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = table.CleanColumnName(name, i)
	}

	dataRows := make([]table.Row, 0, len(rows)-headerIdx-1)
	for _, raw := range rows[headerIdx+1:] {
		row := make(table.Row, len(columns))
		for i, column := range columns {
			if i < len(raw) {
				row[column] = strings.TrimSpace(raw[i])
			} else {
				row[column] = ""
			}
		}
		dataRows = append(dataRows, row)
	}

	return table.New(columns, dataRows), nil
}
