package store

import (
	"errors"
	"sort"
	"strings"
)

// ErrListNotFound is returned when an item refers to a list the caller does
// not own.
var ErrListNotFound = errors.New("list not found")

type scanner interface{ Scan(...any) error }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// setClause renders "a = ?, b = ?" for the given columns in a stable order,
// with booleans stored as integers.
func setClause(cols map[string]any) (string, []any) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" = ?")
		v := cols[name]
		if b, ok := v.(bool); ok {
			v = boolInt(b)
		}
		args = append(args, v)
	}
	return strings.Join(parts, ", "), args
}
