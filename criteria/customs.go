package criteria

import (
	"strconv"
	"strings"
	"time"

	"auditserver/rules"
	"auditserver/tabular"
)

// CustomsInput carries the customs declaration extract and the audit cutoff
// date overdue day counts are measured against.
type CustomsInput struct {
	Declarations tabular.Source
	AuditDate    time.Time
}

// Customs flags declarations without a due date, declarations overdue at the
// audit date, and declarations with an extension on file.
func (r *Runner) Customs(in CustomsInput) (*Result, error) {
	raw, err := r.cache.Excel(in.Declarations)
	if err != nil {
		return nil, err
	}
	if raw.NumRows() == 0 {
		return nil, &tabular.ValidationError{Reason: "input file has no data rows"}
	}

	t := raw.TrimUpperHeaders()
	if err := t.RequireColumns(customsColumns...); err != nil {
		return nil, err
	}

	auditDate := time.Date(in.AuditDate.Year(), in.AuditDate.Month(), in.AuditDate.Day(),
		0, 0, 0, 0, time.UTC)

	due := parseDateColumn(t, "DECLARATION_DUE_DATE")
	received := parseDateColumn(t, "DECLARATION_RECEIVED_DATE")

	out := t.Clone()
	out.AddColumn("DECLARATION_DUE_DATE", func(i int) string { return due[i].render() })
	out.AddColumn("DECLARATION_RECEIVED_DATE", func(i int) string { return received[i].render() })

	out.AddColumn("KHÔNG NHẬP NGÀY ĐẾN HẠN TKHQ", func(i int) string {
		return rules.Mark(!due[i].ok)
	})

	overdue := make([]int, t.NumRows())
	for i := range overdue {
		if due[i].ok && !received[i].ok {
			if d := rules.DaysBetween(due[i].date, auditDate); d > 0 {
				overdue[i] = d
			}
		}
	}
	out.AddColumn("SỐ NGÀY QUÁ HẠN TKHQ", func(i int) string {
		if overdue[i] > 0 {
			return strconv.Itoa(overdue[i])
		}
		return ""
	})
	out.AddColumn("QUÁ HẠN CHƯA NHẬP TKHQ", func(i int) string {
		return rules.Mark(overdue[i] > 0)
	})
	out.AddColumn("QUÁ HẠN > 90 NGÀY CHƯA NHẬP TKHQ", func(i int) string {
		return rules.Mark(due[i].ok && !received[i].ok &&
			rules.ExceedsDays(due[i].date, auditDate, 90))
	})

	hasExtensionDate := t.HasColumn("AUDIT_DATE2")
	hasRefNo := t.HasColumn("DECLARATION_REF_NO")
	out.AddColumn("CÓ PHÁT SINH GIA HẠN TKHQ", func(i int) string {
		if hasExtensionDate {
			if _, ok := tabular.ParseDate(t.Cell(i, "AUDIT_DATE2")); ok {
				return rules.Mark(true)
			}
		}
		if hasRefNo {
			ref := strings.ReplaceAll(strings.ToLower(t.Cell(i, "DECLARATION_REF_NO")), " ", "")
			if strings.Contains(ref, "giahan") {
				return rules.Mark(true)
			}
		}
		return ""
	})

	return &Result{
		Filename: "ket_qua_TKHQ_" + auditDate.Format("02012006") + ".xlsx",
		Sheets:   []tabular.NamedTable{{Name: "KET_QUA_TKHQ", Table: out}},
	}, nil
}

type parsedDate struct {
	date time.Time
	ok   bool
}

// render writes the date back day-first, the display convention of the customs
// result file.
func (p parsedDate) render() string {
	if !p.ok {
		return ""
	}
	return p.date.Format("02-01-2006")
}

// parseDateColumn parses a whole column with day-first auto-detection: any
// sampled day component above 12 flips the entire column to day-first.
func parseDateColumn(t *tabular.Table, col string) []parsedDate {
	values := make([]string, t.NumRows())
	for i := range values {
		values[i] = t.Cell(i, col)
	}
	dayFirst := tabular.DetectDayFirst(values)

	out := make([]parsedDate, len(values))
	for i, v := range values {
		out[i].date, out[i].ok = tabular.ParseDateIn(v, dayFirst)
	}
	return out
}
