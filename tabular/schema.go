package tabular

import (
	"sort"
	"strings"
)

// RequireColumns checks that every declared column can be supplied by the
// table, comparing trimmed upper-cased names. All missing columns are reported
// in a single SchemaError. This is the strict mode used wherever downstream
// arithmetic runs unconditionally.
func (t *Table) RequireColumns(declared ...string) error {
	existing := make(map[string]struct{}, len(t.cols))
	for _, c := range t.cols {
		existing[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	var missing []string
	for _, c := range declared {
		if _, ok := existing[strings.ToUpper(strings.TrimSpace(c))]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Normalize enforces a declared schema: strict mode requires every declared
// column (SchemaError otherwise), relaxed mode adds missing columns
// empty-filled. Either way the result's columns are exactly the declared list
// in declared order, extras dropped.
func (t *Table) Normalize(declared []string, strict bool) (*Table, error) {
	if strict {
		if err := t.RequireColumns(declared...); err != nil {
			return nil, err
		}
	}
	return t.Select(declared...), nil
}

// TrimUpperHeaders trims and upper-cases every column name. Some extracts ship
// headers with stray whitespace or mixed case.
func (t *Table) TrimUpperHeaders() *Table {
	return t.MapHeaders(func(c string) string {
		return strings.ToUpper(strings.TrimSpace(c))
	})
}

// LowerHeaders trims and lower-cases every column name.
func (t *Table) LowerHeaders() *Table {
	return t.MapHeaders(func(c string) string {
		return strings.ToLower(strings.TrimSpace(c))
	})
}
