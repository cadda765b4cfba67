package tabular

// Table is an ordered collection of string-typed columns. Every cell stays
// text until an explicit coercion point (ParseDate, ParseNumber, NormalizeKey);
// upstream extracts are too unpredictable for eager typing.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// NamedTable pairs a result table with its output sheet name.
type NamedTable struct {
	Name  string
	Table *Table
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range t.cols {
		t.index[c] = i
	}
	return t
}

// Columns returns a copy of the column names in declared order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	row := make([]string, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Cell returns the value at row i, column name. Unknown columns read as empty.
func (t *Table) Cell(i int, name string) string {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return t.rows[i][j]
}

// SetCell writes the value at row i, column name. Unknown columns are ignored.
func (t *Table) SetCell(i int, name, value string) {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return
	}
	t.rows[i][j] = value
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.rows))
	j, ok := t.index[name]
	if !ok {
		return out
	}
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out
}

// AddColumn appends a new column filled by fn(row index). When the column
// already exists its values are overwritten in place.
func (t *Table) AddColumn(name string, fn func(i int) string) {
	if j, ok := t.index[name]; ok {
		for i := range t.rows {
			t.rows[i][j] = fn(i)
		}
		return
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], fn(i))
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]string(nil), row...)
	}
	return out
}

// Select returns a new table with exactly the given columns, in the given
// order. Missing columns are added empty-filled, extra input columns are
// dropped. This is the relaxed normalization mode.
func (t *Table) Select(cols ...string) *Table {
	out := New(cols...)
	src := make([]int, len(cols))
	for k, c := range cols {
		if j, ok := t.index[c]; ok {
			src[k] = j
		} else {
			src[k] = -1
		}
	}
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		dst := make([]string, len(cols))
		for k, j := range src {
			if j >= 0 {
				dst[k] = row[j]
			}
		}
		out.rows[i] = dst
	}
	return out
}

// Rename returns a new table with columns renamed per the mapping. Unmapped
// columns keep their names.
func (t *Table) Rename(mapping map[string]string) *Table {
	cols := make([]string, len(t.cols))
	for i, c := range t.cols {
		if n, ok := mapping[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	out := New(cols...)
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]string(nil), row...)
	}
	return out
}

// MapHeaders returns a new table with every column name passed through fn.
// Duplicate names after mapping keep the first occurrence's position and the
// later column is dropped.
func (t *Table) MapHeaders(fn func(string) string) *Table {
	seen := make(map[string]int)
	var cols []string
	var src []int
	for j, c := range t.cols {
		name := fn(c)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = len(cols)
		cols = append(cols, name)
		src = append(src, j)
	}
	out := New(cols...)
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		dst := make([]string, len(cols))
		for k, j := range src {
			dst[k] = row[j]
		}
		out.rows[i] = dst
	}
	return out
}

// Filter returns a new table with only the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := New(t.cols...)
	for i, row := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, append([]string(nil), row...))
		}
	}
	return out
}

// DropDuplicates returns a new table keeping the first occurrence of each
// distinct key-column combination. Later duplicates are silently discarded.
func (t *Table) DropDuplicates(keys ...string) *Table {
	out := New(t.cols...)
	seen := make(map[string]struct{}, len(t.rows))
	for i, row := range t.rows {
		k := ""
		for _, c := range keys {
			k += t.Cell(i, c) + "\x1f"
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.rows = append(out.rows, append([]string(nil), row...))
	}
	return out
}

// Union vertically concatenates tables. The result's columns are the first
// table's columns plus any new columns from later tables, aligned by name;
// cells missing in a source table are empty. No deduplication happens here.
func Union(tables ...*Table) *Table {
	var nonNil []*Table
	for _, t := range tables {
		if t != nil {
			nonNil = append(nonNil, t)
		}
	}
	if len(nonNil) == 0 {
		return New()
	}
	cols := append([]string(nil), nonNil[0].cols...)
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}
	for _, t := range nonNil[1:] {
		for _, c := range t.cols {
			if _, ok := known[c]; !ok {
				known[c] = struct{}{}
				cols = append(cols, c)
			}
		}
	}
	out := New(cols...)
	for _, t := range nonNil {
		for i := 0; i < t.NumRows(); i++ {
			row := make([]string, len(cols))
			for k, c := range cols {
				if t.HasColumn(c) {
					row[k] = t.Cell(i, c)
				}
			}
			out.rows = append(out.rows, row)
		}
	}
	return out
}
