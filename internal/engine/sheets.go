package engine

import (
	"fmt"
	"strings"

	"ledger-reconciliation/internal/domain"
)

// Fixed output sheet names.
const (
	SheetSummary          = "SUMMARY"
	SheetActionSummary    = "ACTION_SUMMARY"
	SheetStatusCombos     = "STATUS_COMBINATIONS"
	SheetCompleteOrders   = "COMPLETE_ORDERS"
	SheetMissingInGateway = "MISSING_IN_GATEWAY"
	SheetMissingInVault   = "MISSING_IN_VAULT"
	SheetMissingInBoth    = "MISSING_IN_BOTH"

	rawSheetPrefix    = "RAW_"
	actionSheetPrefix = "ACTION_"
)

// BuildSheets lays the report out as named tables, in workbook order.
// Sheet names are not length-limited here; writers apply format limits.
func BuildSheets(cfg Config, in Inputs, report *domain.ReconciliationReport) []domain.Sheet {
	agg := report.Aggregation
	enrichedHeader := enrichedColumns(cfg, in.Order.Columns)

	sheets := []domain.Sheet{
		summarySheet(cfg, agg.Summary),
		actionSummarySheet(agg.ActionGroups),
		comboSummarySheet(cfg, agg.ComboGroups),
		rowsSheet(SheetCompleteOrders, enrichedHeader, report.Rows, nil),
		rowsSheet(SheetMissingInGateway, enrichedHeader, report.Rows, func(r domain.ReportRow) bool {
			return !r.Linkage.InGateway
		}),
		rowsSheet(SheetMissingInVault, enrichedHeader, report.Rows, func(r domain.ReportRow) bool {
			return !r.Linkage.InVault
		}),
		rowsSheet(SheetMissingInBoth, enrichedHeader, report.Rows, func(r domain.ReportRow) bool {
			return !r.Linkage.InGateway && !r.Linkage.InVault
		}),
	}

	for _, g := range agg.ComboGroups {
		sheets = append(sheets, rowsSheet(ComboSheetName(cfg, g.Statuses), enrichedHeader, g.Rows, nil))
	}
	if cfg.ActionSheets {
		for _, g := range agg.ActionGroups {
			sheets = append(sheets, rowsSheet(actionSheetPrefix+string(g.Action), enrichedHeader, g.Rows, nil))
		}
	}

	sheets = append(sheets,
		rawSheet(cfg.Order, in.Order),
		rawSheet(cfg.Gateway, in.Gateway),
		rawSheet(cfg.Vault, in.Vault),
	)
	return sheets
}

// ComboSheetName labels a status combination, e.g. ORD_PAID_GW_SUCCESS_VLT_missing.
func ComboSheetName(cfg Config, t domain.StatusTriple) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%s",
		cfg.Order.Prefix, t.Order,
		cfg.Gateway.Prefix, t.Gateway,
		cfg.Vault.Prefix, t.Vault)
}

func enrichedColumns(cfg Config, orderColumns []string) []string {
	header := make([]string, 0, len(orderColumns)+8)
	header = append(header, orderColumns...)
	return append(header,
		fmt.Sprintf("In %s?", cfg.Gateway.Label),
		fmt.Sprintf("In %s?", cfg.Vault.Label),
		cfg.Order.Label+"_Status",
		cfg.Gateway.Label+"_Status",
		cfg.Vault.Label+"_Status",
		"Decision_Category",
		"Action_Required",
		"Priority",
	)
}

func enrichedRow(r domain.ReportRow) []any {
	out := make([]any, 0, len(r.Order.Passthrough)+8)
	for _, v := range r.Order.Passthrough {
		out = append(out, v)
	}
	return append(out,
		yesNo(r.Linkage.InGateway),
		yesNo(r.Linkage.InVault),
		r.Statuses.Order,
		r.Statuses.Gateway,
		r.Statuses.Vault,
		string(r.Classification.Category),
		string(r.Classification.Action),
		r.Classification.Priority,
	)
}

func rowsSheet(name string, header []string, rows []domain.ReportRow, keep func(domain.ReportRow) bool) domain.Sheet {
	s := domain.Sheet{Name: name, Header: header, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		if keep != nil && !keep(r) {
			continue
		}
		s.Rows = append(s.Rows, enrichedRow(r))
	}
	return s
}

func summarySheet(cfg Config, s domain.Summary) domain.Sheet {
	return domain.Sheet{
		Name:   SheetSummary,
		Header: []string{"Metric", "Count"},
		Rows: [][]any{
			{fmt.Sprintf("Total %s Records", cfg.Order.Label), s.TotalOrders},
			{"Fully Reconciled", s.FullyReconciled},
			{"Needs Review/Action", s.NeedsReview},
			{"Alarmed Records", s.Alarmed},
			{fmt.Sprintf("Missing in %s", cfg.Gateway.Label), s.MissingInGateway},
			{fmt.Sprintf("Missing in %s", cfg.Vault.Label), s.MissingInVault},
			{"Missing in Both", s.MissingInBoth},
		},
	}
}

func actionSummarySheet(groups []domain.ActionGroup) domain.Sheet {
	s := domain.Sheet{Name: SheetActionSummary, Header: []string{"Action Required", "Count"}}
	for _, g := range groups {
		s.Rows = append(s.Rows, []any{string(g.Action), g.Count()})
	}
	return s
}

func comboSummarySheet(cfg Config, groups []domain.ComboGroup) domain.Sheet {
	s := domain.Sheet{
		Name: SheetStatusCombos,
		Header: []string{
			cfg.Order.Label + " Status",
			cfg.Gateway.Label + " Status",
			cfg.Vault.Label + " Status",
			"Count",
		},
	}
	for _, g := range groups {
		s.Rows = append(s.Rows, []any{g.Statuses.Order, g.Statuses.Gateway, g.Statuses.Vault, g.Count()})
	}
	return s
}

func rawSheet(cols SourceColumns, t *domain.Table) domain.Sheet {
	s := domain.Sheet{
		Name:   rawSheetPrefix + strings.ToUpper(cols.Label),
		Header: append([]string(nil), t.Columns...),
		Rows:   make([][]any, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		s.Rows = append(s.Rows, cells)
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
