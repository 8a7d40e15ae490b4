package analysis

import (
	"errors"
	"fmt"
	"strings"

	"salescope/internal/fields"
)

// ErrEmptyDataset is returned when the input table has no usable rows.
var ErrEmptyDataset = errors.New("dataset contains no usable rows")

// MissingFieldsError reports required roles that could not be matched
// to any column, with keyword suggestions for the caller to surface.
type MissingFieldsError struct {
	Type        Type
	Roles       []fields.Role
	Suggestions map[fields.Role][]string
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Roles))
	for i, role := range e.Roles {
		names[i] = string(role)
	}
	return fmt.Sprintf("%s analysis is missing required fields: %s",
		e.Type, strings.Join(names, ", "))
}

func newMissingFieldsError(analysisType Type, roles []fields.Role) *MissingFieldsError {
	suggestions := make(map[fields.Role][]string, len(roles))
	for _, role := range roles {
		suggestions[role] = fields.SuggestedKeywords(role, 5)
	}
	return &MissingFieldsError{Type: analysisType, Roles: roles, Suggestions: suggestions}
}
