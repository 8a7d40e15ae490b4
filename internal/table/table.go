// Package table defines the in-memory tabular input consumed by the
// analysis engine. A Table is immutable once built: analyses read cell
// values but never write them back.
package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Row maps an original column name to a scalar cell value (string,
// float64, int or bool depending on the source reader).
type Row map[string]any

// Table is an ordered collection of rows sharing one column set.
type Table struct {
	Columns []string
	Rows    []Row
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanColumnName trims surrounding whitespace and collapses interior
// whitespace runs. Empty or nil headers become positional placeholders
// so every column stays addressable.
func CleanColumnName(name string, index int) string {
	cleaned := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if cleaned == "" {
		return fmt.Sprintf("未命名列_%d", index)
	}
	return cleaned
}

// New builds a Table from raw headers and rows. Header names are
// cleaned, and rows whose cells are all empty are dropped.
func New(columns []string, rows []Row) *Table {
	cleaned := make([]string, len(columns))
	for i, col := range columns {
		cleaned[i] = CleanColumnName(col, i)
	}

	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !rowEmpty(row) {
			kept = append(kept, row)
		}
	}

	return &Table{Columns: cleaned, Rows: kept}
}

func rowEmpty(row Row) bool {
	for _, v := range row {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(val) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsEmpty reports whether the table has no usable rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Sample returns up to n non-empty values from the named column, in row
// order. Used by field detection for content-shape checks.
func (t *Table) Sample(column string, n int) []any {
	values := make([]any, 0, n)
	for _, row := range t.Rows {
		if len(values) >= n {
			break
		}
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}

// NonEmptyCount counts cells in the column that carry a value.
func (t *Table) NonEmptyCount(column string) int {
	count := 0
	for _, row := range t.Rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		count++
	}
	return count
}

// Float coerces a cell value to float64. String cells tolerate thousand
// separators, currency prefixes and percent suffixes since those are
// common in hand-made spreadsheets. The second return is false when the
// cell cannot be read as a number; callers count such cells instead of
// failing the run.
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		return 0, false
	case string:
		return parseNumericString(val)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}

	percent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "¥")
	cleaned = strings.TrimPrefix(cleaned, "￥")
	cleaned = strings.TrimSpace(cleaned)

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}

// IsNumeric reports whether the cell reads as a number.
func IsNumeric(v any) bool {
	_, ok := Float(v)
	return ok
}

// String renders a cell as its display text. Numeric cells keep a
// compact representation so entity keys stay stable across readers.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
