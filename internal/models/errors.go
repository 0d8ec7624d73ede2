package models

import (
	"sort"
	"strings"
)

// FieldErrors maps a field name to its human-readable validation messages.
// Validation failures are always surfaced per field, never collapsed into a
// single opaque error, and a field keeps every message raised against it.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[field], " "))
	}
	return b.String()
}

// Add appends a message for a field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}
