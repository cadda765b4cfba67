package tabular

import (
	"testing"
	"time"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"123", "123"},
		{"123.0", "123"},
		{"123.000", "123"},
		{"0001", "1"},
		{"000", "0"},
		{"  456  ", "456"},
		{"", "NA"},
		{"   ", "NA"},
		{"nan", "NA"},
		{"NaN", "NA"},
		{"AB12", "AB12"},
		{"12.5", "12.5"},
		{"NGUYEN VAN A", "NGUYEN VAN A"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateBranchCode(t *testing.T) {
	if got, err := ValidateBranchCode(" 1000 "); err != nil || got != "1000" {
		t.Errorf("ValidateBranchCode(1000) = %q, %v", got, err)
	}
	for _, bad := range []string{"", "12a4", "123", "12345"} {
		if _, err := ValidateBranchCode(bad); err == nil {
			t.Errorf("ValidateBranchCode(%q) should fail", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in       string
		dayFirst bool
		want     string
		ok       bool
	}{
		{"2025-06-30", false, "2025-06-30", true},
		{"06/30/2025", false, "2025-06-30", true},
		{"30/06/2025", true, "2025-06-30", true},
		{"20250630", false, "2025-06-30", true},
		{"45838", false, "2025-06-30", true}, // Excel serial
		{"", false, "", false},
		{"nan", false, "", false},
		{"not a date", false, "", false},
	}
	for _, c := range cases {
		got, ok := ParseDateIn(c.in, c.dayFirst)
		if ok != c.ok {
			t.Errorf("ParseDateIn(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("ParseDateIn(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestParseDateTruncatesTime(t *testing.T) {
	got, ok := ParseDate("2025-06-30 14:35:00")
	if !ok {
		t.Fatal("timestamp did not parse")
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("time component not truncated: %v", got)
	}
}

func TestDetectDayFirst(t *testing.T) {
	if !DetectDayFirst([]string{"01/05/2025", "25/12/2024"}) {
		t.Error("day 25 should flip the column to day-first")
	}
	if DetectDayFirst([]string{"01/05/2025", "02/06/2025"}) {
		t.Error("all days <= 12 should stay month-first")
	}
	if DetectDayFirst(nil) {
		t.Error("empty sample should stay month-first")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "06/30/2025" {
		t.Errorf("FormatDate = %q, want 06/30/2025", got)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"4.5", "4.5", true},
		{"1,234,567.89", "1234567.89", true},
		{" 100 ", "100", true},
		{"-0.25", "-0.25", true},
		{"", "", false},
		{"nan", "", false},
		{"abc", "", false},
	}
	for _, c := range cases {
		d, ok := ParseNumber(c.in)
		if ok != c.ok {
			t.Errorf("ParseNumber(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && d.String() != c.want {
			t.Errorf("ParseNumber(%q) = %s, want %s", c.in, d, c.want)
		}
	}
}
