// Package rules holds the small calculation primitives shared by the audit
// criteria: marker cells, day arithmetic, trailing windows, rankings and ages.
// Criteria pipelines compose these; none of them touches I/O.
package rules

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"auditserver/tabular"
)

// Marker is the cell value that flags a row for sampling. Unflagged rows carry
// the empty string, so the output columns render as sparse "X" columns.
const Marker = "X"

// Mark converts a rule outcome into a marker cell.
func Mark(flagged bool) string {
	if flagged {
		return Marker
	}
	return ""
}

// DaysBetween counts whole calendar days from a to b. Negative when b is
// earlier than a. Both dates are compared at midnight, so partial days never
// appear.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// WithinTrailingWindow reports whether d falls inside the window of the given
// number of days ending at ref, inclusive of ref itself and exclusive of the
// opening edge: ref-days < d <= ref.
func WithinTrailingWindow(d, ref time.Time, days int) bool {
	delta := DaysBetween(d, ref)
	return delta >= 0 && delta < days
}

// ExceedsDays reports whether more than limit days elapsed from start to end.
func ExceedsDays(start, end time.Time, limit int) bool {
	return DaysBetween(start, end) > limit
}

// AgeYears computes age in completed years at the asOf date, decrementing when
// the birthday has not yet occurred that year.
func AgeYears(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() ||
		(asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

// DistinctCountBy counts, per group key, the distinct normalized values of
// valueCol. Missing-key sentinels are not counted, and rows whose group key is
// the sentinel are skipped entirely.
func DistinctCountBy(t *tabular.Table, groupCol, valueCol string) map[string]int {
	seen := make(map[string]map[string]struct{})
	for i := 0; i < t.NumRows(); i++ {
		g := tabular.NormalizeKey(t.Cell(i, groupCol))
		if g == tabular.MissingKey {
			continue
		}
		v := tabular.NormalizeKey(t.Cell(i, valueCol))
		if v == tabular.MissingKey {
			continue
		}
		if seen[g] == nil {
			seen[g] = make(map[string]struct{})
		}
		seen[g][v] = struct{}{}
	}
	counts := make(map[string]int, len(seen))
	for g, vs := range seen {
		counts[g] = len(vs)
	}
	return counts
}

// MinRankDesc ranks values descending with min-ranking: ties share the
// smallest rank of their run, and the next distinct value resumes at the
// positional rank. [100, 100, 90, 80] ranks as [1, 1, 3, 4]. The ok slice
// marks which inputs were rankable; unrankable entries get rank 0.
func MinRankDesc(values []decimal.Decimal, ok []bool) []int {
	type entry struct {
		idx int
		val decimal.Decimal
	}
	var ranked []entry
	for i, v := range values {
		if ok[i] {
			ranked = append(ranked, entry{idx: i, val: v})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].val.GreaterThan(ranked[b].val)
	})

	out := make([]int, len(values))
	for pos, e := range ranked {
		if pos > 0 && e.val.Equal(ranked[pos-1].val) {
			out[e.idx] = out[ranked[pos-1].idx]
			continue
		}
		out[e.idx] = pos + 1
	}
	return out
}

