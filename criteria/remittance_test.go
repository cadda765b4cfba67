package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditserver/tabular"
)

func TestRemittance(t *testing.T) {
	tx := xlsxFixture(t, "muc09.xlsx", remittanceColumns,
		[]string{"2025-01-10", "ALICE CO", "HOC PHI", "T1", "100.50"},
		[]string{"2025-03-02", "ALICE CO", "HOC PHI", "T2", "200"},
		[]string{"2025-03-02", "ALICE CO", "HOC PHI", "T2", "200"}, // duplicate
		[]string{"2024-06-01", "ALICE CO", "HOC PHI", "T3", "50"},
		[]string{"2025-02-14", "BOB LTD", "TRO CAP THAN NHAN", "T4", "75"},
		[]string{"bad date", "BOB LTD", "TRO CAP THAN NHAN", "T5", "10"},
	)

	res, err := testRunner().Remittance(RemittanceInput{Transactions: tx})
	require.NoError(t, err)
	assert.Equal(t, "tong_hop_chuyen_tien_2023_2025.xlsx", res.Filename)
	require.Len(t, res.Warnings, 1, "unparsable dates surface as a warning")

	out := sheet(t, res, "tong_hop")
	require.Equal(t, 2, out.NumRows(), "one row per counterparty")

	// ALICE CO: two 2025 payments summed, the 2024 one in its own columns.
	assert.Equal(t, "ALICE CO", out.Cell(0, "PART_NAME"))
	assert.Equal(t, "2", out.Cell(0, "HOC_PHI_LAN_2025"))
	assert.Equal(t, "300.50", out.Cell(0, "HOC_PHI_TIEN_2025"))
	assert.Equal(t, "1", out.Cell(0, "HOC_PHI_LAN_2024"))
	assert.Equal(t, "50", out.Cell(0, "HOC_PHI_TIEN_2024"))

	// Purpose with spaces becomes an underscore header.
	assert.Equal(t, "1", out.Cell(1, "TRO_CAP_THAN_NHAN_LAN_2025"))
	assert.Equal(t, "75", out.Cell(1, "TRO_CAP_THAN_NHAN_TIEN_2025"))

	// Cells outside a counterparty's activity fill with zero.
	assert.Equal(t, "0", out.Cell(1, "HOC_PHI_LAN_2025"))
	assert.Equal(t, "0", out.Cell(1, "HOC_PHI_TIEN_2025"))
	assert.Equal(t, "0", out.Cell(0, "TRO_CAP_THAN_NHAN_LAN_2025"))

	// Year columns only exist where some purpose had activity.
	assert.False(t, out.HasColumn("HOC_PHI_LAN_2023"))

	meta := sheet(t, res, "meta")
	require.Equal(t, 1, meta.NumRows())
	assert.Equal(t, "2023", meta.Cell(0, "nam_T2"))
	assert.Equal(t, "2025", meta.Cell(0, "nam_T"))
	assert.Equal(t, "1", meta.Cell(0, "invalid_dates"))
	assert.Equal(t, "1", meta.Cell(0, "removed_duplicates"))
	assert.Equal(t, "2", meta.Cell(0, "so_muc_dich"))
	assert.Equal(t, "5", meta.Cell(0, "rows_after_dedup"))
}

func TestRemittanceNoParseableYear(t *testing.T) {
	tx := xlsxFixture(t, "muc09.xlsx", remittanceColumns,
		[]string{"junk", "A", "P", "T1", "1"},
	)
	_, err := testRunner().Remittance(RemittanceInput{Transactions: tx})
	var ve *tabular.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRemittanceMissingColumns(t *testing.T) {
	tx := xlsxFixture(t, "muc09.xlsx", []string{"TRAN_DATE"}, []string{"2025-01-01"})
	_, err := testRunner().Remittance(RemittanceInput{Transactions: tx})
	var se *tabular.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Missing, 4)
}
