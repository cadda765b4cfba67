package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditserver/tabular"
)

// rowFor builds a row matching the given header, filling named cells and
// leaving the rest empty.
func rowFor(header []string, cells map[string]string) []string {
	row := make([]string, len(header))
	for i, c := range header {
		row[i] = cells[c]
	}
	return row
}

func TestDepositRates(t *testing.T) {
	detail := xlsxFixture(t, "ckh.xlsx", depositDetailColumns,
		rowFor(depositDetailColumns, map[string]string{
			"BRCD": "1000", "IDXACNO": "A1", "LS_GHISO": "5.0", "LS_CONG_BO": "5.0",
		}),
		rowFor(depositDetailColumns, map[string]string{
			"BRCD": "1000", "IDXACNO": "A2", "LS_GHISO": "4.0", "LS_CONG_BO": "5.0",
		}),
		rowFor(depositDetailColumns, map[string]string{
			"BRCD": "2000", "IDXACNO": "A9", "LS_GHISO": "9.0", "LS_CONG_BO": "1.0",
		}),
	)
	ftp := xlsxFixture(t, "ftp.xlsx", []string{"IDXACNO", "LS_FTP"},
		[]string{"A1", "4.5"},
		[]string{"A1", "4.5"}, // duplicate, dropped
	)
	paid := xlsxFixture(t, "paid.xlsx", []string{"Số tài khoản", "Lãi suất thực trả"},
		[]string{"A1", "5.0"},
	)

	res, err := testRunner().DepositRates(DepositRatesInput{
		Detail: []tabular.Source{detail},
		FTP:    []tabular.Source{ftp},
		PaidRate: paid,
		SOL:    "1000",
	})
	require.NoError(t, err)

	out := sheet(t, res, "TC1")
	require.Equal(t, 2, out.NumRows(), "other-branch rows must be filtered out")
	assert.Len(t, out.Columns(), len(depositDetailColumns)+5)

	// A1: rates agree, approved rate present, booked above FTP.
	assert.Empty(t, out.Cell(0, "LSGS ≠ LSCB"))
	assert.Empty(t, out.Cell(0, "Không có LS trình duyệt"))
	assert.Equal(t, "X", out.Cell(0, "LSGS > FTP"))
	assert.Equal(t, "4.5", out.Cell(0, "LS_FTP"))

	// A2: rates disagree, no approved rate, no FTP row to compare against.
	assert.Equal(t, "X", out.Cell(1, "LSGS ≠ LSCB"))
	assert.Equal(t, "X", out.Cell(1, "Không có LS trình duyệt"))
	assert.Empty(t, out.Cell(1, "LSGS > FTP"))

	assert.Equal(t, "TC1.xlsx", res.Filename)
}

func TestDepositRatesMissingColumns(t *testing.T) {
	detail := xlsxFixture(t, "ckh.xlsx", []string{"BRCD", "IDXACNO"},
		[]string{"1000", "A1"})
	ftp := xlsxFixture(t, "ftp.xlsx", []string{"IDXACNO", "LS_FTP"})
	paid := xlsxFixture(t, "paid.xlsx", []string{"Số tài khoản", "Lãi suất thực trả"})

	_, err := testRunner().DepositRates(DepositRatesInput{
		Detail: []tabular.Source{detail},
		FTP:    []tabular.Source{ftp},
		PaidRate: paid,
		SOL:    "1000",
	})
	var se *tabular.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Missing, "LS_GHISO")
}

func TestDepositRatesRejectsBadSOL(t *testing.T) {
	_, err := testRunner().DepositRates(DepositRatesInput{SOL: "12ab"})
	var ve *tabular.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDepositRanking(t *testing.T) {
	term := xlsxFixture(t, "ckh.xlsx", rankingColumns,
		rowFor(rankingColumns, map[string]string{
			"BRCD": "1000", "CUSTSEQ": "100", "CUST_TYPE": "KHDN",
			"NMLOC": "CONG TY A", "CURBAL_VN": "100",
		}),
		rowFor(rankingColumns, map[string]string{
			"BRCD": "1000", "CUSTSEQ": "200", "CUST_TYPE": "KHDN",
			"NMLOC": "CONG TY B", "CURBAL_VN": "90",
		}),
		rowFor(rankingColumns, map[string]string{
			"BRCD": "1000", "CUSTSEQ": "300", "CUST_TYPE": "KHCN",
			"NMLOC": "NGUYEN VAN C", "CURBAL_VN": "80", "BIRTH_DAY": "1990-06-30",
		}),
	)
	demand := xlsxFixture(t, "kkh.xlsx", rankingColumns,
		rowFor(rankingColumns, map[string]string{
			"BRCD": "1000", "CUSTSEQ": "100", "CUST_TYPE": "KHDN",
			"NMLOC": "CONG TY A", "CURBAL_VN": "50",
		}),
	)

	res, err := testRunner().DepositRanking(DepositRankingInput{
		Term:   []tabular.Source{term},
		Demand: []tabular.Source{demand},
		SOL:    "1000",
	})
	require.NoError(t, err)

	out := sheet(t, res, "TC2")
	require.Equal(t, 3, out.NumRows(), "one row per customer after dedup")

	// Customer 100: balances summed across both extracts.
	assert.Equal(t, "100", out.Cell(0, "CIF"))
	assert.Equal(t, "150", out.Cell(0, "SỐ DƯ"))
	assert.Equal(t, "X", out.Cell(0, "TOP10_KHDN"))
	assert.Equal(t, "1", out.Cell(0, "RANK"))
	assert.Empty(t, out.Cell(0, "TOP10_KHCN"), "corporate row never gets a personal marker")

	// Customer 300: only personal customers get an age.
	assert.Equal(t, "35", out.Cell(2, "ĐỘ TUỔI"))
	assert.Equal(t, "06/30/1990", out.Cell(2, "NGAY SINH/NGAY TL"))
	assert.Equal(t, "X", out.Cell(2, "TOP10_KHCN"))
	assert.Empty(t, out.Cell(0, "ĐỘ TUỔI"))

	assert.True(t, out.HasColumn("SOL"))
	assert.False(t, out.HasColumn("BRCD"), "headers must be renamed for the report")
}

func TestDepositWithdrawals(t *testing.T) {
	header := []string{"NGAY_HACH_TOAN", "ACCT_OPN_DATE", "PART_CLOSE_AMT", "SOL_ID", "REMARK"}
	tx := xlsxFixture(t, "muc11.xlsx", header,
		[]string{"2025-07-01", "2025-07-01", "2000000000", "1000", "same day"},
		[]string{"2025-07-03", "2025-07-01", "500", "1000", "two days"},
		[]string{"2025-07-06", "2025-07-01", "500", "1000", "five days"},
		[]string{"2024-01-10", "2024-01-01", "500", "1000", "old posting"},
		[]string{"not a date", "2025-07-01", "500", "1000", "bad posting"},
	)

	res, err := testRunner().DepositWithdrawals(DepositWithdrawalsInput{
		Transactions: tx, SOL: "1000",
	})
	require.NoError(t, err)

	out := sheet(t, res, "TC3")
	require.Equal(t, 5, out.NumRows())
	assert.True(t, out.HasColumn("REMARK"), "extra extract columns pass through")

	assert.Equal(t, "X", out.Cell(0, "MO_RUT_CUNG_NGAY"))
	assert.Equal(t, "X", out.Cell(0, "GD_LON_HON_1TY"))
	assert.Equal(t, "X", out.Cell(0, "TRONG_THOI_HIEU_CAMERA"))

	assert.Equal(t, "X", out.Cell(1, "MO_RUT_1_3_NGAY"))
	assert.Equal(t, "2", out.Cell(1, "CHENH_LECH_NGAY"))
	assert.Empty(t, out.Cell(1, "MO_RUT_CUNG_NGAY"))

	assert.Equal(t, "X", out.Cell(2, "MO_RUT_4_7_NGAY"))

	// Posted a year and a half before the run date.
	assert.Empty(t, out.Cell(3, "TRONG_THOI_HIEU_CAMERA"))

	// Unparsable posting date: no day-delta rule can fire.
	assert.Empty(t, out.Cell(4, "CHENH_LECH_NGAY"))
	assert.Empty(t, out.Cell(4, "MO_RUT_CUNG_NGAY"))
}
