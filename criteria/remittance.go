package criteria

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"auditserver/tabular"
)

// RemittanceInput carries the remittance transaction extract.
type RemittanceInput struct {
	Transactions tabular.Source
}

// maxPurposeHeader caps generated column headers; anything longer is noise
// from free-text purposes.
const maxPurposeHeader = 120

var (
	purposeUnsafeRe = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)
	purposeSpacesRe = regexp.MustCompile(`\s+`)
	remittanceDedup = []string{"PART_NAME", "PURPOSE_OF_REMITTANCE", "TRAN_DATE", "TRAN_ID"}
)

// Remittance pivots remittance transactions per counterparty into count and
// USD-sum columns for each purpose across the three most recent years.
func (r *Runner) Remittance(in RemittanceInput) (*Result, error) {
	raw, err := r.cache.Excel(in.Transactions)
	if err != nil {
		return nil, err
	}
	if raw.NumRows() == 0 {
		return nil, &tabular.ValidationError{Reason: "input file has no data rows"}
	}
	if err := raw.RequireColumns(remittanceColumns...); err != nil {
		return nil, err
	}

	years := make([]int, raw.NumRows())
	invalidDates := 0
	maxYear := 0
	for i := 0; i < raw.NumRows(); i++ {
		d, ok := tabular.ParseDate(raw.Cell(i, "TRAN_DATE"))
		if !ok {
			invalidDates++
			continue
		}
		years[i] = d.Year()
		if years[i] > maxYear {
			maxYear = years[i]
		}
	}
	if maxYear == 0 {
		return nil, &tabular.ValidationError{
			Reason: "no transaction year could be determined: TRAN_DATE never parses as a date",
		}
	}
	reportYears := []int{maxYear - 2, maxYear - 1, maxYear}

	before := raw.NumRows()
	deduped := raw.DropDuplicates(remittanceDedup...)
	removedDuplicates := before - deduped.NumRows()

	// Row years must follow the surviving rows after deduplication.
	dedupYears := make([]int, deduped.NumRows())
	for i := 0; i < deduped.NumRows(); i++ {
		if d, ok := tabular.ParseDate(deduped.Cell(i, "TRAN_DATE")); ok {
			dedupYears[i] = d.Year()
		}
	}

	var purposes []string
	seenPurpose := make(map[string]struct{})
	for i := 0; i < deduped.NumRows(); i++ {
		p := deduped.Cell(i, "PURPOSE_OF_REMITTANCE")
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, ok := seenPurpose[p]; !ok {
			seenPurpose[p] = struct{}{}
			purposes = append(purposes, p)
		}
	}
	if len(purposes) == 0 {
		return nil, &tabular.ValidationError{
			Reason: "no remittance purpose available for aggregation",
		}
	}

	type cellKey struct {
		party string
		col   string
	}
	counts := make(map[cellKey]int)
	sums := make(map[cellKey]decimal.Decimal)
	var parties []string
	seenParty := make(map[string]struct{})
	var columns []string

	for _, purpose := range purposes {
		safe := sanitizePurposeHeader(purpose)
		for _, year := range reportYears {
			countCol := fmt.Sprintf("%s_LAN_%d", safe, year)
			sumCol := fmt.Sprintf("%s_TIEN_%d", safe, year)
			matched := false
			for i := 0; i < deduped.NumRows(); i++ {
				if deduped.Cell(i, "PURPOSE_OF_REMITTANCE") != purpose || dedupYears[i] != year {
					continue
				}
				matched = true
				party := deduped.Cell(i, "PART_NAME")
				if _, ok := seenParty[party]; !ok {
					seenParty[party] = struct{}{}
					parties = append(parties, party)
				}
				counts[cellKey{party, countCol}]++
				amount, ok := tabular.ParseNumber(deduped.Cell(i, "QUY_DOI_USD"))
				if !ok {
					amount = decimal.Zero
				}
				sums[cellKey{party, sumCol}] = sums[cellKey{party, sumCol}].Add(amount)
			}
			if matched {
				columns = append(columns, countCol, sumCol)
			}
		}
	}

	summary := tabular.New(append([]string{"PART_NAME"}, columns...)...)
	for _, party := range parties {
		row := make([]string, 0, len(columns)+1)
		row = append(row, party)
		for _, col := range columns {
			if strings.Contains(col, "_LAN_") {
				row = append(row, strconv.Itoa(counts[cellKey{party, col}]))
			} else {
				row = append(row, sums[cellKey{party, col}].String())
			}
		}
		summary.AppendRow(row...)
	}

	meta := tabular.New("nam_T2", "nam_T1", "nam_T", "invalid_dates",
		"removed_duplicates", "so_muc_dich", "rows_after_dedup")
	meta.AppendRow(
		strconv.Itoa(reportYears[0]),
		strconv.Itoa(reportYears[1]),
		strconv.Itoa(reportYears[2]),
		strconv.Itoa(invalidDates),
		strconv.Itoa(removedDuplicates),
		strconv.Itoa(len(purposes)),
		strconv.Itoa(deduped.NumRows()),
	)

	res := &Result{
		Filename: fmt.Sprintf("tong_hop_chuyen_tien_%d_%d.xlsx", reportYears[0], reportYears[2]),
		Sheets: []tabular.NamedTable{
			{Name: "tong_hop", Table: summary},
			{Name: "meta", Table: meta},
		},
	}
	if invalidDates > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d rows have an unparsable TRAN_DATE and were excluded from the year pivots", invalidDates))
	}
	return res, nil
}

// sanitizePurposeHeader makes a free-form purpose usable inside a column
// header: whitespace collapsed, exotic characters replaced, length capped.
func sanitizePurposeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = purposeSpacesRe.ReplaceAllString(s, " ")
	s = purposeUnsafeRe.ReplaceAllString(s, "_")
	s = strings.ReplaceAll(s, " ", "_")
	runes := []rune(s)
	if len(runes) > maxPurposeHeader {
		s = string(runes[:maxPurposeHeader])
	}
	return s
}
