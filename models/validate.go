package models

import (
	"sort"
	"strings"
)

// FieldErrors maps a field name to a human-readable violation. An empty map
// means the input passed validation.
type FieldErrors map[string]string

func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Error joins the violations in field order so FieldErrors can travel inside
// a plain error message when only one string is wanted.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}
