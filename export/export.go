// Package export renders result tables into a downloadable multi-sheet
// workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"auditserver/tabular"
)

// maxSheetNameLen is the workbook format's hard limit on sheet name length.
const maxSheetNameLen = 31

// invalidSheetChars are rejected by the workbook format inside sheet names.
const invalidSheetChars = `[]:*?/\`

// WriteWorkbook renders the named tables into one workbook, one sheet per
// table in the given order. Sheet names are sanitized and truncated to the
// format's 31-character limit; names colliding after truncation get a numeric
// suffix so every table keeps its own sheet. All cells are written as text.
func WriteWorkbook(tables []tabular.NamedTable) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]struct{}, len(tables))
	for i, nt := range tables {
		name := uniqueSheetName(nt.Name, used)
		used[name] = struct{}{}

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("create sheet %q: %w", name, err)
			}
		}
		if err := writeSheet(f, name, nt.Table); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t *tabular.Table) error {
	header := make([]interface{}, len(t.Columns()))
	for j, c := range t.Columns() {
		header[j] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}

	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, len(t.Columns()))
		for j, c := range t.Columns() {
			row[j] = t.Cell(i, c)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

func uniqueSheetName(raw string, used map[string]struct{}) string {
	name := sanitizeSheetName(raw)
	if _, taken := used[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate := truncate(name, maxSheetNameLen-len(suffix)) + suffix
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

func sanitizeSheetName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = "Sheet"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, name)
	return truncate(name, maxSheetNameLen)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
