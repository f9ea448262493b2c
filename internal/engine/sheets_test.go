package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-reconciliation/internal/domain"
)

func sheetNames(sheets []domain.Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}

func findSheet(t *testing.T, sheets []domain.Sheet, name string) domain.Sheet {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	require.FailNow(t, "sheet not found", name)
	return domain.Sheet{}
}

func sheetInputs() Inputs {
	return Inputs{
		Order: orderTable(
			[]string{"O1", "T1", "PAID", "10"},
			[]string{"O2", "T2", "PENDING", "20"},
			[]string{"O3", "T3", "PENDING", "30"},
		),
		Gateway: gatewayTable([]string{"O1", "SUCCESS"}),
		Vault:   vaultTable([]string{"T1", "not cancelled"}, []string{"T2", "cancelled"}),
	}
}

func TestBuildSheets_Layout(t *testing.T) {
	eng := newTestEngine(t)
	report, err := eng.Run(sheetInputs())
	require.NoError(t, err)

	assert.Equal(t, []string{
		SheetSummary,
		SheetActionSummary,
		SheetStatusCombos,
		SheetCompleteOrders,
		SheetMissingInGateway,
		SheetMissingInVault,
		SheetMissingInBoth,
		"ORD_PAID_GW_SUCCESS_VLT_not cancelled",
		"ORD_PENDING_GW_MISSING_VLT_cancelled",
		"ORD_PENDING_GW_MISSING_VLT_missing",
		"RAW_ORDER",
		"RAW_GATEWAY",
		"RAW_VAULT",
	}, sheetNames(report.Sheets))
}

func TestBuildSheets_EnrichedRows(t *testing.T) {
	eng := newTestEngine(t)
	report, err := eng.Run(sheetInputs())
	require.NoError(t, err)

	complete := findSheet(t, report.Sheets, SheetCompleteOrders)
	assert.Equal(t, []string{
		"Order Id", "Merchant Transaction ID", "Order Status", "Amount",
		"In Gateway?", "In Vault?",
		"Order_Status", "Gateway_Status", "Vault_Status",
		"Decision_Category", "Action_Required", "Priority",
	}, complete.Header)
	require.Len(t, complete.Rows, 3)
	assert.Equal(t, []any{
		"O1", "T1", "PAID", "10",
		"YES", "YES",
		"PAID", "SUCCESS", "not cancelled",
		"FULLY_RECONCILED", "NO ACTION", 1,
	}, complete.Rows[0])

	assert.Len(t, findSheet(t, report.Sheets, SheetMissingInGateway).Rows, 2)
	assert.Len(t, findSheet(t, report.Sheets, SheetMissingInVault).Rows, 1)
	both := findSheet(t, report.Sheets, SheetMissingInBoth)
	require.Len(t, both.Rows, 1)
	assert.Equal(t, "O3", both.Rows[0][0])
}

func TestBuildSheets_Summary(t *testing.T) {
	eng := newTestEngine(t)
	report, err := eng.Run(sheetInputs())
	require.NoError(t, err)

	summary := findSheet(t, report.Sheets, SheetSummary)
	assert.Equal(t, [][]any{
		{"Total Order Records", 3},
		{"Fully Reconciled", 1},
		{"Needs Review/Action", 2},
		{"Alarmed Records", 2},
		{"Missing in Gateway", 2},
		{"Missing in Vault", 1},
		{"Missing in Both", 1},
	}, summary.Rows)

	combos := findSheet(t, report.Sheets, SheetStatusCombos)
	assert.Equal(t, []string{"Order Status", "Gateway Status", "Vault Status", "Count"}, combos.Header)
	assert.Len(t, combos.Rows, 3)
}

func TestBuildSheets_ActionSheets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActionSheets = true
	eng, err := New(cfg)
	require.NoError(t, err)

	report, err := eng.Run(sheetInputs())
	require.NoError(t, err)

	names := sheetNames(report.Sheets)
	for _, g := range report.Aggregation.ActionGroups {
		assert.Contains(t, names, "ACTION_"+string(g.Action))
	}
	assert.Equal(t, "RAW_VAULT", names[len(names)-1])
}

func TestBuildSheets_RawSheetsAreVerbatim(t *testing.T) {
	eng := newTestEngine(t)
	in := sheetInputs()
	report, err := eng.Run(in)
	require.NoError(t, err)

	raw := findSheet(t, report.Sheets, "RAW_GATEWAY")
	assert.Equal(t, in.Gateway.Columns, raw.Header)
	assert.Equal(t, [][]any{{"O1", "SUCCESS"}}, raw.Rows)
}

func TestComboSheetName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gateway.Prefix = "PG"
	name := ComboSheetName(cfg, domain.StatusTriple{Order: "PAID", Gateway: "SUCCESS", Vault: "missing"})
	assert.Equal(t, "ORD_PAID_PG_SUCCESS_VLT_missing", name)
}
