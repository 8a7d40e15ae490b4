package fields

import (
	"strings"

	"salescope/internal/table"
)

const sampleSize = 5

// ColumnInfo describes what detection learned about one column.
type ColumnInfo struct {
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	NonEmpty     int    `json:"non_empty_count"`
	SampleValues []any  `json:"sample_values"`
	Numeric      bool   `json:"numeric"`
}

// Detection is the result of scanning a table.
type Detection struct {
	Fields       Map          `json:"fields"`
	Columns      []ColumnInfo `json:"columns"`
	TotalRows    int          `json:"total_rows"`
	TotalColumns int          `json:"total_columns"`
}

// DetectColumn classifies a column by its cleaned name alone. Matching
// order: exact alias, containment either way, then loose single-keyword
// patterns. Returns RoleUnknown when nothing applies.
func DetectColumn(name string) Role {
	cleaned := table.CleanColumnName(name, 0)
	aliases := Aliases()

	for _, role := range roleOrder {
		for _, alias := range aliases[role] {
			if cleaned == alias {
				return role
			}
		}
	}

	best := RoleUnknown
	bestLen := 0
	for _, role := range roleOrder {
		for _, alias := range aliases[role] {
			if strings.Contains(cleaned, alias) || strings.Contains(alias, cleaned) {
				// Prefer the longer, more specific alias when several
				// roles claim the same column by containment.
				if len(alias) > bestLen {
					best = role
					bestLen = len(alias)
				}
			}
		}
	}
	if best != RoleUnknown {
		return best
	}

	lower := strings.ToLower(cleaned)
	for _, entry := range loosePatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return entry.role
			}
		}
	}

	return RoleUnknown
}

// Detect scans all columns of the table and builds a role mapping.
// Name heuristics come first; content-shape checks then veto mappings
// that cannot hold (a numeric column can never be a text role, and a
// numeric role prefers columns whose samples parse as numbers). When
// two columns compete for a role, the one matching an earlier alias
// wins; ties keep the first occurrence.
func Detect(t *table.Table) Detection {
	detection := Detection{
		Fields:       Map{},
		TotalRows:    len(t.Rows),
		TotalColumns: len(t.Columns),
	}

	aliases := Aliases()

	for _, column := range t.Columns {
		samples := t.Sample(column, sampleSize)
		numeric := columnNumeric(samples)

		role := DetectColumn(column)
		if role != RoleUnknown && !shapeAllows(role, numeric, samples) {
			role = RoleUnknown
		}

		detection.Columns = append(detection.Columns, ColumnInfo{
			Name:         column,
			Role:         role,
			NonEmpty:     t.NonEmptyCount(column),
			SampleValues: samples,
			Numeric:      numeric,
		})

		if role == RoleUnknown {
			continue
		}

		current, taken := detection.Fields[role]
		if !taken {
			detection.Fields[role] = column
			continue
		}
		if aliasPriority(aliases[role], column) < aliasPriority(aliases[role], current) {
			detection.Fields[role] = column
		}
	}

	return detection
}

// shapeAllows applies the content-shape veto rules.
func shapeAllows(role Role, numeric bool, samples []any) bool {
	if len(samples) == 0 {
		// Nothing to check against; trust the name.
		return true
	}
	if textRoles[role] && numeric {
		return false
	}
	if numericRoles[role] && !numeric {
		return false
	}
	return true
}

// columnNumeric reports whether the majority of sampled values parse as
// numbers. A strict all-or-nothing rule would reject columns with one
// stray annotation cell.
func columnNumeric(samples []any) bool {
	if len(samples) == 0 {
		return false
	}
	numeric := 0
	for _, v := range samples {
		if table.IsNumeric(v) {
			numeric++
		}
	}
	return numeric*2 > len(samples)
}

func aliasPriority(list []string, column string) int {
	cleaned := table.CleanColumnName(column, 0)
	for i, alias := range list {
		if cleaned == alias {
			return i
		}
	}
	return len(list) + 1
}

// Merge overlays user-confirmed overrides on top of a detected mapping
// and returns the combined map. Overrides always win.
func (m Map) Merge(overrides Map) Map {
	merged := Map{}
	for role, column := range m {
		merged[role] = column
	}
	for role, column := range overrides {
		if column == "" {
			delete(merged, role)
			continue
		}
		merged[role] = column
	}
	return merged
}

// Missing returns the required roles for the analysis type that the
// mapping does not cover.
func (m Map) Missing(analysisType string) []Role {
	var missing []Role
	for _, role := range RequiredRoles(analysisType) {
		if m[role] == "" {
			missing = append(missing, role)
		}
	}
	return missing
}

// HasCost reports whether any cost-family role was detected.
func (m Map) HasCost() bool {
	for _, role := range CostRoles {
		if m[role] != "" {
			return true
		}
	}
	return false
}
