package criteria

import (
	"strconv"

	"github.com/shopspring/decimal"

	"auditserver/rules"
	"auditserver/tabular"
)

// DepositRatesInput carries the uploads for the deposit rate criterion.
type DepositRatesInput struct {
	Detail   []tabular.Source // term-deposit detail extracts
	FTP      []tabular.Source // funds-transfer-pricing extracts
	PaidRate tabular.Source   // actually-paid rate listing
	SOL      string
}

// DepositRates flags term deposits whose booked rate deviates from the
// published rate, lacks an approved paid rate, or exceeds the FTP rate.
func (r *Runner) DepositRates(in DepositRatesInput) (*Result, error) {
	sol, err := tabular.ValidateBranchCode(in.SOL)
	if err != nil {
		return nil, err
	}

	detailSrcs, err := expandSpreadsheets(in.Detail)
	if err != nil {
		return nil, err
	}
	detailRaw, err := r.readUnion(detailSrcs)
	if err != nil {
		return nil, err
	}
	detail, err := detailRaw.Normalize(depositDetailColumns, true)
	if err != nil {
		return nil, err
	}

	ftpRaw, err := r.readUnion(in.FTP)
	if err != nil {
		return nil, err
	}
	ftp, err := ftpRaw.Normalize(ftpColumns, true)
	if err != nil {
		return nil, err
	}
	ftp = ftp.DropDuplicates(ftpColumns...)

	paidRaw, err := r.cache.Excel(in.PaidRate)
	if err != nil {
		return nil, err
	}
	if err := paidRaw.RequireColumns("Số tài khoản", "Lãi suất thực trả"); err != nil {
		return nil, err
	}
	paid := paidRaw.
		Rename(map[string]string{
			"Số tài khoản":      "IDXACNO",
			"Lãi suất thực trả": "LS_THUC_TRA",
		}).
		Select("IDXACNO", "LS_THUC_TRA").
		DropDuplicates("IDXACNO", "LS_THUC_TRA")

	merged := tabular.FilterBranchContains(detail, "BRCD", sol)
	merged = tabular.LeftJoin(merged, ftp, tabular.Join{
		LeftKey: "IDXACNO", RightKey: "IDXACNO", Take: []string{"LS_FTP"},
	})
	merged = tabular.LeftJoin(merged, paid, tabular.Join{
		LeftKey: "IDXACNO", RightKey: "IDXACNO", Take: []string{"LS_THUC_TRA"},
	})

	snapshot := merged.Clone()
	merged.AddColumn("LSGS ≠ LSCB", func(i int) string {
		booked, okB := tabular.ParseNumber(snapshot.Cell(i, "LS_GHISO"))
		published, okP := tabular.ParseNumber(snapshot.Cell(i, "LS_CONG_BO"))
		return rules.Mark(okB && okP && !booked.Equal(published))
	})
	merged.AddColumn("Không có LS trình duyệt", func(i int) string {
		_, ok := tabular.ParseNumber(snapshot.Cell(i, "LS_THUC_TRA"))
		return rules.Mark(!ok)
	})
	merged.AddColumn("LSGS > FTP", func(i int) string {
		booked, okB := tabular.ParseNumber(snapshot.Cell(i, "LS_GHISO"))
		ftpRate, okF := tabular.ParseNumber(snapshot.Cell(i, "LS_FTP"))
		return rules.Mark(okB && okF && booked.GreaterThan(ftpRate))
	})

	// Lock the output to the declared layout plus the appended columns.
	finalCols := append(append([]string{}, depositDetailColumns...),
		"LS_FTP", "LS_THUC_TRA",
		"LSGS ≠ LSCB", "Không có LS trình duyệt", "LSGS > FTP")
	merged = merged.Select(finalCols...)

	return &Result{
		Filename: "TC1.xlsx",
		Sheets:   []tabular.NamedTable{{Name: "TC1", Table: merged}},
	}, nil
}

// DepositRankingInput carries the uploads for the balance ranking criterion.
type DepositRankingInput struct {
	Term   []tabular.Source // CKH detail extracts
	Demand []tabular.Source // KKH detail extracts
	SOL    string
}

// DepositRanking aggregates balances per customer and flags the branch's
// top 10/15/20 customers per customer type.
func (r *Runner) DepositRanking(in DepositRankingInput) (*Result, error) {
	sol, err := tabular.ValidateBranchCode(in.SOL)
	if err != nil {
		return nil, err
	}

	read := func(srcs []tabular.Source) (*tabular.Table, error) {
		expanded, err := expandSpreadsheets(srcs)
		if err != nil {
			return nil, err
		}
		raw, err := r.readUnion(expanded)
		if err != nil {
			return nil, err
		}
		return raw.Normalize(rankingColumns, true)
	}

	term, err := read(in.Term)
	if err != nil {
		return nil, err
	}
	demand, err := read(in.Demand)
	if err != nil {
		return nil, err
	}

	all := tabular.FilterBranchContains(tabular.Union(term, demand), "BRCD", sol)

	// Balance per customer across both deposit kinds. Unparsable balances
	// contribute nothing to the sum.
	sums := make(map[string]decimal.Decimal)
	for i := 0; i < all.NumRows(); i++ {
		cif := tabular.NormalizeKey(all.Cell(i, "CUSTSEQ"))
		if cif == tabular.MissingKey {
			continue
		}
		if bal, ok := tabular.ParseNumber(all.Cell(i, "CURBAL_VN")); ok {
			sums[cif] = sums[cif].Add(bal)
		} else if _, seen := sums[cif]; !seen {
			sums[cif] = decimal.Zero
		}
	}

	out := all.DropDuplicates("CUSTSEQ")
	snapshot := out.Clone()
	out.AddColumn("SỐ DƯ", func(i int) string {
		cif := tabular.NormalizeKey(snapshot.Cell(i, "CUSTSEQ"))
		if total, ok := sums[cif]; ok {
			return total.String()
		}
		return ""
	})

	today := r.today()
	out.AddColumn("ĐỘ TUỔI", func(i int) string {
		if snapshot.Cell(i, "CUST_TYPE") != "KHCN" {
			return ""
		}
		birth, ok := tabular.ParseDate(snapshot.Cell(i, "BIRTH_DAY"))
		if !ok {
			return ""
		}
		return strconv.Itoa(rules.AgeYears(birth, today))
	})
	out.AddColumn("BIRTH_DAY", func(i int) string {
		if birth, ok := tabular.ParseDate(snapshot.Cell(i, "BIRTH_DAY")); ok {
			return tabular.FormatDate(birth)
		}
		return ""
	})

	ranks := rankWithinTypes(out)
	out.AddColumn("RANK_RAW", func(i int) string {
		if ranks[i] == 0 {
			return ""
		}
		return strconv.Itoa(ranks[i])
	})
	for _, custType := range []string{"KHDN", "KHCN"} {
		for _, n := range []int{10, 15, 20} {
			col := "TOP" + strconv.Itoa(n) + "_" + custType
			limit := n
			ct := custType
			out.AddColumn(col, func(i int) string {
				return rules.Mark(snapshot.Cell(i, "CUST_TYPE") == ct &&
					ranks[i] > 0 && ranks[i] <= limit)
			})
		}
	}
	out.AddColumn("RANK", func(i int) string {
		if ranks[i] > 0 && ranks[i] <= 20 {
			return strconv.Itoa(ranks[i])
		}
		return ""
	})

	out = out.Rename(map[string]string{
		"BRCD":      "SOL",
		"CUST_TYPE": "LOAI KH",
		"CUSTSEQ":   "CIF",
		"NMLOC":     "HO TEN",
		"BIRTH_DAY": "NGAY SINH/NGAY TL",
		"KH_VIP":    "KH VIP",
	})

	return &Result{
		Filename: "TC2.xlsx",
		Sheets:   []tabular.NamedTable{{Name: "TC2", Table: out}},
	}, nil
}

// rankWithinTypes min-ranks the "SỐ DƯ" column descending inside each
// CUST_TYPE partition. Rows that cannot be ranked get 0.
func rankWithinTypes(t *tabular.Table) []int {
	byType := make(map[string][]int)
	for i := 0; i < t.NumRows(); i++ {
		ct := t.Cell(i, "CUST_TYPE")
		byType[ct] = append(byType[ct], i)
	}

	ranks := make([]int, t.NumRows())
	for _, rows := range byType {
		values := make([]decimal.Decimal, len(rows))
		oks := make([]bool, len(rows))
		for j, i := range rows {
			values[j], oks[j] = tabular.ParseNumber(t.Cell(i, "SỐ DƯ"))
		}
		for j, rank := range rules.MinRankDesc(values, oks) {
			ranks[rows[j]] = rank
		}
	}
	return ranks
}

// DepositWithdrawalsInput carries the uploads for the withdrawal criterion.
type DepositWithdrawalsInput struct {
	Transactions tabular.Source
	SOL          string
}

// oneBillion is the withdrawal amount threshold in VND.
var oneBillion = decimal.NewFromInt(1_000_000_000)

// DepositWithdrawals flags deposits withdrawn soon after opening, large
// withdrawals, and postings still inside the camera retention window.
func (r *Runner) DepositWithdrawals(in DepositWithdrawalsInput) (*Result, error) {
	sol, err := tabular.ValidateBranchCode(in.SOL)
	if err != nil {
		return nil, err
	}

	t, err := r.cache.Excel(in.Transactions)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(withdrawalColumns...); err != nil {
		return nil, err
	}

	out := tabular.FilterBranchContains(t, "SOL_ID", sol)
	snapshot := out.Clone()

	delta := make([]int, out.NumRows())
	deltaOK := make([]bool, out.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		posted, okP := tabular.ParseDate(snapshot.Cell(i, "NGAY_HACH_TOAN"))
		opened, okO := tabular.ParseDate(snapshot.Cell(i, "ACCT_OPN_DATE"))
		if okP && okO {
			delta[i] = rules.DaysBetween(opened, posted)
			deltaOK[i] = true
		}
	}

	out.AddColumn("CHENH_LECH_NGAY", func(i int) string {
		if !deltaOK[i] {
			return ""
		}
		return strconv.Itoa(delta[i])
	})
	out.AddColumn("MO_RUT_CUNG_NGAY", func(i int) string {
		return rules.Mark(deltaOK[i] && delta[i] == 0)
	})
	out.AddColumn("MO_RUT_1_3_NGAY", func(i int) string {
		return rules.Mark(deltaOK[i] && delta[i] > 0 && delta[i] <= 3)
	})
	out.AddColumn("MO_RUT_4_7_NGAY", func(i int) string {
		return rules.Mark(deltaOK[i] && delta[i] >= 4 && delta[i] <= 7)
	})
	out.AddColumn("GD_LON_HON_1TY", func(i int) string {
		amt, ok := tabular.ParseNumber(snapshot.Cell(i, "PART_CLOSE_AMT"))
		return rules.Mark(ok && amt.GreaterThan(oneBillion))
	})

	today := r.today()
	out.AddColumn("TRONG_THOI_HIEU_CAMERA", func(i int) string {
		posted, ok := tabular.ParseDate(snapshot.Cell(i, "NGAY_HACH_TOAN"))
		return rules.Mark(ok && rules.DaysBetween(posted, today) <= 90)
	})

	return &Result{
		Filename: "TC3.xlsx",
		Sheets:   []tabular.NamedTable{{Name: "TC3", Table: out}},
	}, nil
}
