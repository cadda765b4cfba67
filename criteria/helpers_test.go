package criteria

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"auditserver/tabular"
)

// fixedNow keeps date-window rules deterministic across test runs.
var fixedNow = time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC)

func testRunner() *Runner {
	return NewRunnerAt(func() time.Time { return fixedNow })
}

func xlsxFixture(t *testing.T, name string, header []string, rows ...[]string) tabular.Source {
	t.Helper()
	f := excelize.NewFile()
	all := append([][]string{header}, rows...)
	for i, row := range all {
		for j, cell := range row {
			ref, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellStr("Sheet1", ref, cell); err != nil {
				t.Fatalf("fixture cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("fixture workbook: %v", err)
	}
	return tabular.Source{Name: name, Data: buf.Bytes()}
}

func zipFixture(t *testing.T, name string, entries map[string][]byte) tabular.Source {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, data := range entries {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("fixture zip: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("fixture zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("fixture zip close: %v", err)
	}
	return tabular.Source{Name: name, Data: buf.Bytes()}
}

// sheet extracts a result sheet by name, failing the test when absent.
func sheet(t *testing.T, res *Result, name string) *tabular.Table {
	t.Helper()
	for _, nt := range res.Sheets {
		if nt.Name == name {
			return nt.Table
		}
	}
	t.Fatalf("result has no sheet %q, sheets: %v", name, sheetNames(res))
	return nil
}

func sheetNames(res *Result) []string {
	names := make([]string, len(res.Sheets))
	for i, nt := range res.Sheets {
		names[i] = nt.Name
	}
	return names
}
