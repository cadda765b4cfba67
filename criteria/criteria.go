// Package criteria implements the audit sampling pipelines. Each criterion
// family takes uploaded extracts, reconciles them and returns marker-annotated
// result tables ready for export. All business column names are part of the
// upstream extract contract and are reproduced verbatim.
package criteria

import (
	"strings"
	"time"

	"auditserver/tabular"
)

// Result is the outcome of one criterion run.
type Result struct {
	// Filename is the suggested download name for the exported workbook.
	Filename string
	// Sheets lists the result tables in export order.
	Sheets []tabular.NamedTable
	// Warnings are non-fatal data quality notes surfaced to the auditor.
	Warnings []string
}

// Runner executes criterion pipelines. The parse cache is shared across runs;
// the clock is injectable so date-window rules are testable.
type Runner struct {
	cache *tabular.ReadCache
	now   func() time.Time
}

// NewRunner creates a Runner with a fresh parse cache and the wall clock.
func NewRunner() *Runner {
	return &Runner{cache: tabular.NewReadCache(), now: time.Now}
}

// NewRunnerAt creates a Runner whose "today" is fixed, for reproducible runs.
func NewRunnerAt(now func() time.Time) *Runner {
	return &Runner{cache: tabular.NewReadCache(), now: now}
}

func (r *Runner) today() time.Time {
	t := r.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// expandSpreadsheets flattens a mixed list of uploads: zip archives are
// replaced by their spreadsheet entries, everything else passes through.
func expandSpreadsheets(srcs []tabular.Source) ([]tabular.Source, error) {
	var out []tabular.Source
	for _, src := range srcs {
		if strings.HasSuffix(strings.ToLower(src.Name), ".zip") {
			entries, err := tabular.ExtractArchive(src, ".xls", ".xlsx")
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
			continue
		}
		out = append(out, src)
	}
	return out, nil
}

// firstText returns the upload itself when it is a plain text file, or the
// first .txt entry when it is a zip archive.
func firstText(src tabular.Source) (tabular.Source, error) {
	if !strings.HasSuffix(strings.ToLower(src.Name), ".zip") {
		return src, nil
	}
	entries, err := tabular.ExtractArchive(src, ".txt")
	if err != nil {
		return tabular.Source{}, err
	}
	if len(entries) == 0 {
		return tabular.Source{}, &tabular.ValidationError{
			Reason: "archive " + src.Name + " contains no .txt file",
		}
	}
	return entries[0], nil
}

// readUnion parses every spreadsheet source through the cache and unions the
// results.
func (r *Runner) readUnion(srcs []tabular.Source) (*tabular.Table, error) {
	if len(srcs) == 0 {
		return tabular.New(), nil
	}
	tables := make([]*tabular.Table, 0, len(srcs))
	for _, src := range srcs {
		t, err := r.cache.Excel(src)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tabular.Union(tables...), nil
}

// selectExcept returns the table without the given columns, order preserved.
func selectExcept(t *tabular.Table, drop ...string) *tabular.Table {
	skip := make(map[string]struct{}, len(drop))
	for _, c := range drop {
		skip[c] = struct{}{}
	}
	var keep []string
	for _, c := range t.Columns() {
		if _, ok := skip[c]; !ok {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}
