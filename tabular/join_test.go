package tabular

import "testing"

func TestLeftJoinDedupsRight(t *testing.T) {
	left := New("ACCT", "AMT")
	left.AppendRow("A1", "10")
	left.AppendRow("A2", "20")
	left.AppendRow("A3", "30")

	right := New("ID", "RATE")
	right.AppendRow("A1", "4.5")
	right.AppendRow("A1", "9.9") // duplicate key, must be discarded
	right.AppendRow("A2", "5.0")

	got := LeftJoin(left, right, Join{LeftKey: "ACCT", RightKey: "ID", Take: []string{"RATE"}})

	if got.NumRows() != left.NumRows() {
		t.Fatalf("rows = %d, want %d (left row count preserved)", got.NumRows(), left.NumRows())
	}
	if got.Cell(0, "RATE") != "4.5" {
		t.Errorf("A1 rate = %q, want first occurrence 4.5", got.Cell(0, "RATE"))
	}
	if got.Cell(1, "RATE") != "5.0" {
		t.Errorf("A2 rate = %q, want 5.0", got.Cell(1, "RATE"))
	}
	if got.Cell(2, "RATE") != "" {
		t.Errorf("unmatched A3 rate = %q, want empty", got.Cell(2, "RATE"))
	}
}

func TestLeftJoinNormalizesKeys(t *testing.T) {
	left := New("CIF")
	left.AppendRow("123.0")
	left.AppendRow("")

	right := New("CIF", "NAME")
	right.AppendRow("0123", "AN")
	right.AppendRow("", "GHOST")

	got := LeftJoin(left, right, Join{LeftKey: "CIF", RightKey: "CIF", Take: []string{"NAME"}})

	if got.Cell(0, "NAME") != "AN" {
		t.Errorf("float-text and zero-padded forms of the same key must join, got %q", got.Cell(0, "NAME"))
	}
	if got.Cell(1, "NAME") != "" {
		t.Errorf("missing keys must never match each other, got %q", got.Cell(1, "NAME"))
	}
}

func TestLeftJoinRename(t *testing.T) {
	left := New("ACY_AVL_BAL")
	left.AppendRow("100")
	right := New("ACY_AVL_BAL", "FTP")
	right.AppendRow("100", "3.2")

	got := LeftJoin(left, right, Join{
		LeftKey:  "ACY_AVL_BAL",
		RightKey: "ACY_AVL_BAL",
		Take:     []string{"FTP"},
		Rename:   map[string]string{"FTP": "FTP_RATE"},
	})

	if !got.HasColumn("FTP_RATE") || got.HasColumn("FTP") {
		t.Fatalf("columns = %v", got.Columns())
	}
	if got.Cell(0, "FTP_RATE") != "3.2" {
		t.Errorf("FTP_RATE = %q, want 3.2", got.Cell(0, "FTP_RATE"))
	}
}

func TestFillByGroup(t *testing.T) {
	tbl := New("ACCT", "CIF")
	tbl.AppendRow("A1", "NA")
	tbl.AppendRow("A1", "777")
	tbl.AppendRow("A2", "NA")
	tbl.AppendRow("A1", "888") // conflicting value, first resolved one wins

	got := FillByGroup(tbl, "ACCT", "CIF")

	if got.Cell(0, "CIF") != "777" {
		t.Errorf("row 0 CIF = %q, want 777", got.Cell(0, "CIF"))
	}
	if got.Cell(2, "CIF") != "NA" {
		t.Errorf("group with no resolved value must keep the sentinel, got %q", got.Cell(2, "CIF"))
	}
	if got.Cell(3, "CIF") != "888" {
		t.Errorf("already-resolved cells must not be overwritten, got %q", got.Cell(3, "CIF"))
	}
}

func TestClassifyBySetsPriority(t *testing.T) {
	tbl := New("CIF")
	tbl.AppendRow("1")
	tbl.AppendRow("2")
	tbl.AppendRow("3")

	cats := []Category{
		{Name: "TOP10_KHDN", Members: map[string]struct{}{"1": {}, "2": {}}},
		{Name: "TOP10_KHCN", Members: map[string]struct{}{"2": {}, "3": {}}},
	}
	got := ClassifyBySets(tbl, "CIF", "PHANKHUC", cats, "KHAC")

	if got.Cell(0, "PHANKHUC") != "TOP10_KHDN" {
		t.Errorf("row 0 = %q", got.Cell(0, "PHANKHUC"))
	}
	// Row in both sets takes the earlier category.
	if got.Cell(1, "PHANKHUC") != "TOP10_KHDN" {
		t.Errorf("row 1 = %q, want first matching category", got.Cell(1, "PHANKHUC"))
	}
	if got.Cell(2, "PHANKHUC") != "TOP10_KHCN" {
		t.Errorf("row 2 = %q", got.Cell(2, "PHANKHUC"))
	}
}

func TestKeySet(t *testing.T) {
	tbl := New("CIF")
	tbl.AppendRow("123.0")
	tbl.AppendRow("")
	tbl.AppendRow("456")

	set := KeySet(tbl, "CIF")
	if len(set) != 2 {
		t.Fatalf("set size = %d, want 2", len(set))
	}
	if _, ok := set["123"]; !ok {
		t.Error("normalized key 123 missing")
	}
	if _, ok := set[MissingKey]; ok {
		t.Error("sentinel must not enter the set")
	}
}
