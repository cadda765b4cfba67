package criteria

import (
	"strconv"
	"strings"
	"time"

	"auditserver/rules"
	"auditserver/tabular"
)

// StaffAccountsInput carries the uploads for the staff account and card
// mapping criteria.
type StaffAccountsInput struct {
	Accounts     []tabular.Source // demand-deposit detail extracts or zips (42a)
	ChargeLevels tabular.Source   // fee charge-level listing (42b)
	Staff        tabular.Source   // current staff list (42c)
	Resigned     tabular.Source   // resigned staff list (42d)
	CardMapping  tabular.Source   // card mapping extract (1405)
	SOL          string
}

// schemeExcludeKeywords drop technical account schemes that are never staff
// benefit accounts.
var schemeExcludeKeywords = []string{
	"KY QUY", "GIAI NGAN", "CHI LUONG", "TKTT THE", "TRUNG GIAN",
}

// cardWindowCutoff: card mappings uploaded on or before this date predate the
// review period and are not flagged.
var cardWindowCutoff = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

// StaffAccounts cross-checks personal deposit accounts against the staff
// charge-level code, the staff roster and the resignation list, and flags
// cards opened and closed within a 6-month window.
func (r *Runner) StaffAccounts(in StaffAccountsInput) (*Result, error) {
	sol, err := tabular.ValidateBranchCode(in.SOL)
	if err != nil {
		return nil, err
	}

	raw, err := r.readExpanded(in.Accounts)
	if err != nil {
		return nil, err
	}
	accounts := tabular.FilterBranchContains(raw, "BRCD", sol)
	accounts, err = accounts.Normalize(staffAccountColumns, false)
	if err != nil {
		return nil, err
	}
	accounts = accounts.Filter(func(i int) bool {
		return strings.ToUpper(strings.TrimSpace(accounts.Cell(i, "CUST_TYPE"))) == "KHCN"
	})
	accounts = accounts.Filter(func(i int) bool {
		scheme := strings.ToUpper(accounts.Cell(i, "SCHM_NAME"))
		for _, kw := range schemeExcludeKeywords {
			if strings.Contains(scheme, kw) {
				return false
			}
		}
		return true
	})

	charges, err := r.cache.Excel(in.ChargeLevels)
	if err != nil {
		return nil, err
	}
	charges, err = charges.Normalize(
		[]string{"MACIF", "STKKH", "CHARGELEVELCODE_CIF", "CHARGELEVELCODE_TK"}, false)
	if err != nil {
		return nil, err
	}

	accounts = tabular.LeftJoin(accounts, charges, tabular.Join{
		LeftKey: "CUSTSEQ", RightKey: "MACIF",
		Take:   []string{"CHARGELEVELCODE_CIF"},
		Rename: map[string]string{"CHARGELEVELCODE_CIF": "CHARGELEVELCODE_CUA_CIF"},
	})
	accounts = tabular.LeftJoin(accounts, charges, tabular.Join{
		LeftKey: "IDXACNO", RightKey: "STKKH",
		Take:   []string{"CHARGELEVELCODE_TK"},
		Rename: map[string]string{"CHARGELEVELCODE_TK": "CHARGELEVELCODE_CUA_TK"},
	})

	withCodes := accounts.Clone()
	accounts.AddColumn("TK_GAN_CODE_UU_DAI_CBNV", func(i int) string {
		code := strings.TrimSpace(withCodes.Cell(i, "CHARGELEVELCODE_CUA_TK"))
		return rules.Mark(code == "NVEIB")
	})

	staff, err := r.cache.Excel(in.Staff)
	if err != nil {
		return nil, err
	}
	staff, err = staff.Normalize([]string{"Mã số CIF", "Mã NV"}, false)
	if err != nil {
		return nil, err
	}
	accounts = tabular.LeftJoin(accounts, staff, tabular.Join{
		LeftKey: "CUSTSEQ", RightKey: "Mã số CIF",
		Take: []string{"Mã số CIF", "Mã NV"},
	})

	resigned, err := r.cache.Excel(in.Resigned)
	if err != nil {
		return nil, err
	}
	resigned, err = resigned.Normalize([]string{"CIF", "Ngày thôi việc"}, false)
	if err != nil {
		return nil, err
	}
	accounts = tabular.LeftJoin(accounts, resigned, tabular.Join{
		LeftKey: "CUSTSEQ", RightKey: "CIF",
		Take:   []string{"CIF", "Ngày thôi việc"},
		Rename: map[string]string{"Ngày thôi việc": "NGAY_NGHI_VIEC"},
	})

	withResigned := accounts.Clone()
	accounts.AddColumn("CBNV_NGHI_VIEC", func(i int) string {
		return rules.Mark(strings.TrimSpace(withResigned.Cell(i, "CIF")) != "")
	})
	accounts.AddColumn("NGAY_NGHI_VIEC", func(i int) string {
		return reformatDate(withResigned.Cell(i, "NGAY_NGHI_VIEC"))
	})
	accounts = selectExcept(accounts, "CIF")

	mapping, err := r.cardMapping(in.CardMapping)
	if err != nil {
		return nil, err
	}

	return &Result{
		Filename: "DVKH_TC4_5.xlsx",
		Sheets: []tabular.NamedTable{
			{Name: "Tieu_chi_4", Table: accounts},
			{Name: "Tieu_chi_5", Table: mapping},
		},
	}, nil
}

// cardMapping derives the open-to-close day count for each card and flags
// cards closed within 180 days when the upload falls after the review cutoff.
func (r *Runner) cardMapping(src tabular.Source) (*tabular.Table, error) {
	raw, err := r.cache.Excel(src)
	if err != nil {
		return nil, err
	}
	mapping, err := raw.LowerHeaders().Normalize(cardMappingColumns, false)
	if err != nil {
		return nil, err
	}

	snapshot := mapping.Clone()
	mapping.AddColumn("SO_NGAY_MO_THE", func(i int) string {
		uploaded, okU := tabular.ParseDate(snapshot.Cell(i, "uploaddt"))
		closed, okC := tabular.ParseDate(snapshot.Cell(i, "xpcodedt"))
		if !okU || !okC {
			return ""
		}
		return strconv.Itoa(rules.DaysBetween(uploaded, closed))
	})
	mapping.AddColumn("MO_DONG_TRONG_6_THANG", func(i int) string {
		uploaded, okU := tabular.ParseDate(snapshot.Cell(i, "uploaddt"))
		closed, okC := tabular.ParseDate(snapshot.Cell(i, "xpcodedt"))
		return rules.Mark(okU && okC &&
			rules.WithinTrailingWindow(uploaded, closed, 180) &&
			uploaded.After(cardWindowCutoff))
	})
	mapping.AddColumn("uploaddt", func(i int) string {
		return reformatDate(snapshot.Cell(i, "uploaddt"))
	})
	mapping.AddColumn("xpcodedt", func(i int) string {
		return reformatDate(snapshot.Cell(i, "xpcodedt"))
	})
	return mapping, nil
}
