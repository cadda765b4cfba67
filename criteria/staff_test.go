package criteria

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditserver/tabular"
)

func TestStaffAccounts(t *testing.T) {
	gofakeit.Seed(42)

	accounts := xlsxFixture(t, "42a.xlsx", staffAccountColumns,
		// Staff-coded account held by a resigned employee.
		rowFor(staffAccountColumns, map[string]string{
			"BRCD": "1000", "CUST_TYPE": "KHCN", "CUSTSEQ": "100",
			"IDXACNO": "111", "NMLOC": strings.ToUpper(gofakeit.Name()),
			"SCHM_NAME": "TKTT CA NHAN",
		}),
		// Ordinary personal account, nothing to flag.
		rowFor(staffAccountColumns, map[string]string{
			"BRCD": "1000", "CUST_TYPE": "KHCN", "CUSTSEQ": "200",
			"IDXACNO": "222", "NMLOC": strings.ToUpper(gofakeit.Name()),
			"SCHM_NAME": "TKTT CA NHAN",
		}),
		// Corporate customer: dropped.
		rowFor(staffAccountColumns, map[string]string{
			"BRCD": "1000", "CUST_TYPE": "KHDN", "CUSTSEQ": "300",
			"IDXACNO": "333", "SCHM_NAME": "TKTT CA NHAN",
		}),
		// Excluded technical scheme: dropped.
		rowFor(staffAccountColumns, map[string]string{
			"BRCD": "1000", "CUST_TYPE": "KHCN", "CUSTSEQ": "400",
			"IDXACNO": "444", "SCHM_NAME": "TK CHI LUONG THANG",
		}),
		// Other branch: dropped.
		rowFor(staffAccountColumns, map[string]string{
			"BRCD": "2000", "CUST_TYPE": "KHCN", "CUSTSEQ": "500",
			"IDXACNO": "555", "SCHM_NAME": "TKTT CA NHAN",
		}),
	)

	charges := xlsxFixture(t, "42b.xlsx",
		[]string{"MACIF", "STKKH", "CHARGELEVELCODE_CIF", "CHARGELEVELCODE_TK"},
		[]string{"100", "111", "NVEIB", "NVEIB"},
		[]string{"200", "222", "STD", "STD"},
	)
	staff := xlsxFixture(t, "42c.xlsx",
		[]string{"Mã số CIF", "Mã NV"},
		[]string{"100", "NV001"},
	)
	resigned := xlsxFixture(t, "42d.xlsx",
		[]string{"CIF", "Ngày thôi việc"},
		[]string{"100", "2025-03-15"},
	)
	mapping := xlsxFixture(t, "1405.xlsx",
		[]string{"BRCD", "CARDNBR", "UPLOADDT", "XPCODEDT", "CUSTNM"},
		// Opened after the cutoff and closed within 180 days: flagged.
		[]string{"1000", "C1", "2025-07-01", "2025-08-15", "A"},
		// Opened before the cutoff: never flagged.
		[]string{"1000", "C2", "2025-05-01", "2025-06-01", "B"},
		// Closed long after opening: not flagged.
		[]string{"1000", "C3", "2025-07-01", "2026-07-01", "C"},
	)

	res, err := testRunner().StaffAccounts(StaffAccountsInput{
		Accounts:     []tabular.Source{accounts},
		ChargeLevels: charges,
		Staff:        staff,
		Resigned:     resigned,
		CardMapping:  mapping,
		SOL:          "1000",
	})
	require.NoError(t, err)
	assert.Equal(t, "DVKH_TC4_5.xlsx", res.Filename)

	tc4 := sheet(t, res, "Tieu_chi_4")
	require.Equal(t, 2, tc4.NumRows(),
		"corporate, excluded-scheme and other-branch rows must be gone")

	assert.Equal(t, "NVEIB", tc4.Cell(0, "CHARGELEVELCODE_CUA_TK"))
	assert.Equal(t, "X", tc4.Cell(0, "TK_GAN_CODE_UU_DAI_CBNV"))
	assert.Equal(t, "NV001", tc4.Cell(0, "Mã NV"))
	assert.Equal(t, "X", tc4.Cell(0, "CBNV_NGHI_VIEC"))
	assert.Equal(t, "03/15/2025", tc4.Cell(0, "NGAY_NGHI_VIEC"))
	assert.False(t, tc4.HasColumn("CIF"), "resignation join helper must be dropped")
	assert.False(t, tc4.HasColumn("MACIF"))
	assert.False(t, tc4.HasColumn("STKKH"))

	assert.Empty(t, tc4.Cell(1, "TK_GAN_CODE_UU_DAI_CBNV"))
	assert.Empty(t, tc4.Cell(1, "CBNV_NGHI_VIEC"))
	assert.Empty(t, tc4.Cell(1, "NGAY_NGHI_VIEC"))

	tc5 := sheet(t, res, "Tieu_chi_5")
	require.Equal(t, 3, tc5.NumRows())
	assert.Equal(t, "45", tc5.Cell(0, "SO_NGAY_MO_THE"))
	assert.Equal(t, "X", tc5.Cell(0, "MO_DONG_TRONG_6_THANG"))
	assert.Equal(t, "07/01/2025", tc5.Cell(0, "uploaddt"))
	assert.Equal(t, "08/15/2025", tc5.Cell(0, "xpcodedt"))

	assert.Empty(t, tc5.Cell(1, "MO_DONG_TRONG_6_THANG"),
		"uploads on or before 2025-06-30 are out of the review window")
	assert.Empty(t, tc5.Cell(2, "MO_DONG_TRONG_6_THANG"))
	assert.Equal(t, "365", tc5.Cell(2, "SO_NGAY_MO_THE"))
}

func TestStaffAccountsRequiresSOL(t *testing.T) {
	_, err := testRunner().StaffAccounts(StaffAccountsInput{})
	var ve *tabular.ValidationError
	require.ErrorAs(t, err, &ve)
}
