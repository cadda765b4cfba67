package tabular

// Join describes one left-join step against a lookup table.
type Join struct {
	LeftKey  string
	RightKey string
	// Take lists the right-hand columns appended to the result. The raw join
	// key column itself is not carried over unless listed here.
	Take []string
	// Rename maps taken column names to their names in the result.
	Rename map[string]string
}

// LeftJoin joins every row of left against right on normalized keys. The
// right table is first deduplicated on its join column, keeping the first
// occurrence; later duplicates are silently discarded, which keeps the row
// count of the result equal to the row count of left. Unmatched cells stay
// empty. Missing-key sentinels never match each other.
func LeftJoin(left, right *Table, j Join) *Table {
	lookup := make(map[string]int)
	for i := 0; i < right.NumRows(); i++ {
		key := NormalizeKey(right.Cell(i, j.RightKey))
		if key == MissingKey {
			continue
		}
		if _, dup := lookup[key]; !dup {
			lookup[key] = i
		}
	}

	out := left.Clone()
	for _, col := range j.Take {
		name := col
		if n, ok := j.Rename[col]; ok {
			name = n
		}
		src := col
		out.AddColumn(name, func(i int) string {
			key := NormalizeKey(left.Cell(i, j.LeftKey))
			if key == MissingKey {
				return ""
			}
			ri, ok := lookup[key]
			if !ok {
				return ""
			}
			return right.Cell(ri, src)
		})
	}
	return out
}

// FillByGroup propagates resolved identifier values inside groups: for every
// group of rows sharing groupCol, the first non-sentinel value of valueCol in
// input order replaces the sentinel on the group's other rows. Groups with no
// resolved value stay as they are. Best-effort heuristic: it assumes all rows
// of a group denote the same underlying entity, and when a group carries
// conflicting resolved values the first one encountered wins.
func FillByGroup(t *Table, groupCol, valueCol string) *Table {
	first := make(map[string]string)
	for i := 0; i < t.NumRows(); i++ {
		v := t.Cell(i, valueCol)
		if v == MissingKey || v == "" {
			continue
		}
		g := t.Cell(i, groupCol)
		if _, ok := first[g]; !ok {
			first[g] = v
		}
	}

	out := t.Clone()
	for i := 0; i < out.NumRows(); i++ {
		if out.Cell(i, valueCol) != MissingKey {
			continue
		}
		if v, ok := first[out.Cell(i, groupCol)]; ok {
			out.SetCell(i, valueCol, v)
		}
	}
	return out
}

// Category is one membership set consulted by ClassifyBySets.
type Category struct {
	Name    string
	Members map[string]struct{}
}

// ClassifyBySets adds outCol, classifying each row's normalized key into the
// first category whose set contains it. Categories are consulted in order;
// rows matching none get the fallback label.
func ClassifyBySets(t *Table, keyCol, outCol string, cats []Category, fallback string) *Table {
	out := t.Clone()
	out.AddColumn(outCol, func(i int) string {
		key := NormalizeKey(t.Cell(i, keyCol))
		for _, cat := range cats {
			if _, ok := cat.Members[key]; ok {
				return cat.Name
			}
		}
		return fallback
	})
	return out
}

// KeySet collects the normalized non-sentinel keys of a column.
func KeySet(t *Table, col string) map[string]struct{} {
	set := make(map[string]struct{})
	for i := 0; i < t.NumRows(); i++ {
		key := NormalizeKey(t.Cell(i, col))
		if key == MissingKey {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}
