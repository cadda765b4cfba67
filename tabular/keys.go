package tabular

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MissingKey is the sentinel for identifier values that could not be resolved.
// It survives into output tables, matching spreadsheet display conventions.
const MissingKey = "NA"

var (
	intWithFractionRe = regexp.MustCompile(`^\d+(\.0+)?$`)
	digitsOnlyRe      = regexp.MustCompile(`^\d+$`)
	ambiguousDateRe   = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
)

// NormalizeKey canonicalizes an identifier cell into a comparable string.
// Numeric identifiers that arrive as floating-point text ("123.00") collapse
// to the plain integer form; empty, whitespace-only and "nan" cells become the
// MissingKey sentinel; anything else passes through trimmed.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return MissingKey
	}
	if intWithFractionRe.MatchString(s) {
		if dot := strings.IndexByte(s, '.'); dot >= 0 {
			s = s[:dot]
		}
		if v := strings.TrimLeft(s, "0"); v != "" {
			return v
		}
		return "0"
	}
	return s
}

// IsDigits reports whether the string is one or more ASCII digits.
func IsDigits(s string) bool {
	return digitsOnlyRe.MatchString(s)
}

// ValidateBranchCode checks a user-supplied SOL/branch code: exactly 4 ASCII
// digits. Anything else fails with a ValidationError stating the expected
// format.
func ValidateBranchCode(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{Reason: "branch code is required (e.g. 1000)"}
	}
	if !IsDigits(s) {
		return "", &ValidationError{Reason: "branch code must contain digits only (0-9)"}
	}
	if len(s) != 4 {
		return "", &ValidationError{Reason: "branch code must be exactly 4 digits (e.g. 1000)"}
	}
	return s, nil
}

// FilterBranchContains keeps rows whose column contains the branch code,
// case-insensitive after upper-casing both sides. Contains rather than exact
// match: branch columns in some extracts embed extra text around the code.
// An empty pattern keeps every row.
func FilterBranchContains(t *Table, col, pattern string) *Table {
	p := strings.ToUpper(strings.TrimSpace(pattern))
	if p == "" {
		return t.Clone()
	}
	return t.Filter(func(i int) bool {
		return strings.Contains(strings.ToUpper(t.Cell(i, col)), p)
	})
}

var monthFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/2006 15:04:05",
	time.RFC3339,
}

var dayFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"20060102",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// excelEpoch is the zero day of Excel's serial date numbering.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a text cell into a calendar date, month-first for ambiguous
// forms. Excel serial numbers are accepted. Unparsable values report ok=false,
// never an error: "date not entered" is a first-class condition downstream.
func ParseDate(raw string) (time.Time, bool) {
	return ParseDateIn(raw, false)
}

// ParseDateIn parses like ParseDate with an explicit day-first choice for
// ambiguous D-M-Y vs M-D-Y text.
func ParseDateIn(raw string, dayFirst bool) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}
	layouts := monthFirstLayouts
	if dayFirst {
		layouts = dayFirstLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(24 * time.Hour), true
		}
	}
	// Excel stores dates as day counts since 1899-12-30.
	if num, err := strconv.ParseFloat(s, 64); err == nil && num > 0 && num < 300000 {
		return excelEpoch.AddDate(0, 0, int(num)), true
	}
	return time.Time{}, false
}

// DetectDayFirst samples the first 20 parseable-looking values of a column for
// a day component exceeding 12. If one is found the whole column is read
// day-first; otherwise month-first.
func DetectDayFirst(values []string) bool {
	sampled := 0
	for _, v := range values {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if m := ambiguousDateRe.FindStringSubmatch(s); m != nil {
			day, _ := strconv.Atoi(m[1])
			if day > 12 {
				return true
			}
		}
		sampled++
		if sampled >= 20 {
			break
		}
	}
	return false
}

// FormatDate renders a date as MM/DD/YYYY, the display convention of the
// source extracts.
func FormatDate(t time.Time) string {
	return t.Format("01/02/2006")
}

// ParseNumber parses a decimal cell, tolerating spaces and thousand
// separators. Unparsable values report ok=false; rules treat them as "cannot
// compare", never as zero.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
