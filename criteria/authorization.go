package criteria

import (
	"regexp"
	"strings"

	"auditserver/rules"
	"auditserver/tabular"
)

// AuthorizationInput carries the uploads for the account authorization
// criteria: deposit details for account classification, the authorization
// register, the SMS registration dump and the online-banking registration
// listing.
type AuthorizationInput struct {
	Term    []tabular.Source // CKH detail extracts or zip archives
	Demand  []tabular.Source // KKH detail extracts or zip archives
	Grants  tabular.Source   // authorization register (MUC30)
	SMS     tabular.Source   // zip with the SMS registration .txt, or the .txt itself
	Service tabular.Source   // online-banking (SCM010) registration listing
}

var (
	signatureAuthRe = regexp.MustCompile(`(?i)chu\s*ky|chuky|cky`)
	personNameRe    = regexp.MustCompile(`^[A-Z ]{3,}$`)
	nameSplitRe     = regexp.MustCompile(`[-,]`)
)

// corporateGrantorKeywords identify company names among grantors; corporate
// authorizations are out of this criterion's scope.
var corporateGrantorKeywords = []string{
	"CONG TY", "CTY", "CONGTY", "CÔNG TY", "CÔNGTY",
}

// Authorization reconciles signature authorizations against deposit accounts,
// SMS registrations and online-banking registrations. It returns the enriched
// register plus the multi-grantor view.
func (r *Runner) Authorization(in AuthorizationInput) (*Result, error) {
	term, err := r.readExpanded(in.Term)
	if err != nil {
		return nil, err
	}
	demand, err := r.readExpanded(in.Demand)
	if err != nil {
		return nil, err
	}
	accounts := tabular.Union(term, demand)

	grantsRaw, err := r.cache.Excel(in.Grants)
	if err != nil {
		return nil, err
	}

	grants := grantsRaw
	if grants.HasColumn("DESCRIPTION") {
		grants = grants.Filter(func(i int) bool {
			return signatureAuthRe.MatchString(grants.Cell(i, "DESCRIPTION"))
		})
	} else {
		grants = grants.Filter(func(i int) bool { return false })
	}

	withDates := grants.Clone()
	grants.AddColumn("EXPIRYDATE_str", func(i int) string {
		return reformatDate(withDates.Cell(i, "EXPIRYDATE"))
	})
	grants.AddColumn("EFFECTIVEDATE_str", func(i int) string {
		return reformatDate(withDates.Cell(i, "EFFECTIVEDATE"))
	})

	grants = grants.Filter(func(i int) bool {
		grantor := strings.ToUpper(grants.Cell(i, "NGUOI_UY_QUYEN"))
		for _, kw := range corporateGrantorKeywords {
			if strings.Contains(grantor, kw) {
				return false
			}
		}
		return true
	})

	if grants.HasColumn("NGUOI_DUOC_UY_QUYEN") {
		named := grants.Clone()
		grants.AddColumn("NGUOI_DUOC_UY_QUYEN", func(i int) string {
			return extractRecipientName(named.Cell(i, "NGUOI_DUOC_UY_QUYEN"))
		})
	} else {
		grants.AddColumn("NGUOI_DUOC_UY_QUYEN", func(i int) string { return "" })
	}

	var dedupKeys []string
	for _, c := range []string{"PRIMARY_SOL_ID", "TK_DUOC_UY_QUYEN", "NGUOI_DUOC_UY_QUYEN"} {
		if grants.HasColumn(c) {
			dedupKeys = append(dedupKeys, c)
		}
	}
	if len(dedupKeys) > 0 {
		grants = grants.DropDuplicates(dedupKeys...)
	}

	merged := grants
	if accounts.HasColumn("IDXACNO") && accounts.HasColumn("CUSTSEQ") && grants.HasColumn("TK_DUOC_UY_QUYEN") {
		merged = tabular.LeftJoin(grants, accounts, tabular.Join{
			LeftKey: "TK_DUOC_UY_QUYEN", RightKey: "IDXACNO", Take: []string{"CUSTSEQ"},
		})
	} else {
		merged = merged.Clone()
		merged.AddColumn("CUSTSEQ", func(i int) string { return "" })
	}

	withGrantorCIF := merged.Clone()
	merged.AddColumn("CIF_NGUOI_UY_QUYEN", func(i int) string {
		return tabular.NormalizeKey(withGrantorCIF.Cell(i, "CUSTSEQ"))
	})
	merged = selectExcept(merged, "CUSTSEQ")

	if merged.HasColumn("NGUOI_UY_QUYEN") {
		merged = tabular.FillByGroup(merged, "NGUOI_UY_QUYEN", "CIF_NGUOI_UY_QUYEN")
	}

	categories := []tabular.Category{
		{Name: "CKH", Members: tabular.KeySet(term, "CUSTSEQ")},
		{Name: "KKH", Members: tabular.KeySet(demand, "IDXACNO")},
	}
	merged = tabular.ClassifyBySets(merged, "TK_DUOC_UY_QUYEN", "LOAI_TK", categories, tabular.MissingKey)

	snapshot := merged.Clone()
	yearDiff := func(i int) (int, bool) {
		expiry, okE := tabular.ParseDate(snapshot.Cell(i, "EXPIRYDATE_str"))
		effective, okF := tabular.ParseDate(snapshot.Cell(i, "EFFECTIVEDATE_str"))
		if !okE || !okF {
			return 0, false
		}
		return expiry.Year() - effective.Year(), true
	}
	merged.AddColumn("KHONG_NHAP_TGIAN_UQ", func(i int) string {
		diff, ok := yearDiff(i)
		return rules.Mark(ok && diff == 99)
	})
	merged.AddColumn("UQ_TREN_50_NAM", func(i int) string {
		diff, ok := yearDiff(i)
		return rules.Mark(ok && diff >= 50)
	})

	smsAccounts, err := r.smsAccountSet(in.SMS)
	if err != nil {
		return nil, err
	}
	serviceCIFs, err := r.serviceCIFSet(in.Service)
	if err != nil {
		return nil, err
	}

	final := merged.Clone()
	merged.AddColumn("TK có đăng ký SMS", func(i int) string {
		key := tabular.NormalizeKey(final.Cell(i, "TK_DUOC_UY_QUYEN"))
		_, ok := smsAccounts[key]
		return rules.Mark(key != tabular.MissingKey && ok)
	})
	merged.AddColumn("CIF có đăng ký SCM010", func(i int) string {
		key := final.Cell(i, "CIF_NGUOI_UY_QUYEN")
		_, ok := serviceCIFs[key]
		return rules.Mark(key != tabular.MissingKey && ok)
	})

	multiGrantor := merged.Clone()
	grantorCounts := rules.DistinctCountBy(multiGrantor, "NGUOI_DUOC_UY_QUYEN", "NGUOI_UY_QUYEN")
	multiGrantor.AddColumn("1 người nhận UQ của nhiều người", func(i int) string {
		recipient := tabular.NormalizeKey(multiGrantor.Cell(i, "NGUOI_DUOC_UY_QUYEN"))
		return rules.Mark(grantorCounts[recipient] >= 2)
	})

	return &Result{
		Filename: "DVKH_TC1_3.xlsx",
		Sheets: []tabular.NamedTable{
			{Name: "UyQuyen", Table: merged},
			{Name: "UyQuyen_TC3", Table: multiGrantor},
		},
	}, nil
}

func (r *Runner) readExpanded(srcs []tabular.Source) (*tabular.Table, error) {
	expanded, err := expandSpreadsheets(srcs)
	if err != nil {
		return nil, err
	}
	return r.readUnion(expanded)
}

// smsAccountSet loads the SMS registration dump and returns the registered
// personal account numbers. Corporate registrations and rows without a numeric
// account are dropped.
func (r *Runner) smsAccountSet(src tabular.Source) (map[string]struct{}, error) {
	if len(src.Data) == 0 {
		return map[string]struct{}{}, nil
	}
	txt, err := firstText(src)
	if err != nil {
		return nil, err
	}
	sms, err := r.cache.Delimited(txt, '\t')
	if err != nil {
		return nil, err
	}
	if !sms.HasColumn("FORACID") {
		return map[string]struct{}{}, nil
	}
	sms = sms.Filter(func(i int) bool {
		if !tabular.IsDigits(sms.Cell(i, "FORACID")) {
			return false
		}
		if sms.HasColumn("CUSTTPCD") &&
			strings.ToUpper(strings.TrimSpace(sms.Cell(i, "CUSTTPCD"))) == "KHDN" {
			return false
		}
		return true
	})
	return tabular.KeySet(sms, "FORACID"), nil
}

// serviceCIFSet loads the online-banking registration listing and returns the
// registered CIF identifiers.
func (r *Runner) serviceCIFSet(src tabular.Source) (map[string]struct{}, error) {
	if len(src.Data) == 0 {
		return map[string]struct{}{}, nil
	}
	t, err := r.cache.Excel(src)
	if err != nil {
		return nil, err
	}
	t = t.MapHeaders(strings.TrimSpace)
	if !t.HasColumn("CIF_ID") {
		return map[string]struct{}{}, nil
	}
	return tabular.KeySet(t, "CIF_ID"), nil
}

// extractRecipientName isolates the upper-case person name from a free-form
// recipient cell like "NGUYEN VAN A - GIAM DOC". Cells without a recognizable
// name pass through unchanged.
func extractRecipientName(value string) string {
	for _, part := range nameSplitRe.Split(value, -1) {
		name := strings.TrimSpace(part)
		if personNameRe.MatchString(name) {
			return name
		}
	}
	return value
}

// reformatDate re-renders a parseable date cell as MM/DD/YYYY, empty when the
// cell does not parse.
func reformatDate(raw string) string {
	if d, ok := tabular.ParseDate(raw); ok {
		return tabular.FormatDate(d)
	}
	return ""
}
