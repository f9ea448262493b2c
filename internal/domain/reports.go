package domain

import "encoding/json"

// Summary provides high-level statistics of the reconciliation run.
type Summary struct {
	TotalOrders      int `json:"total_orders"`
	FullyReconciled  int `json:"fully_reconciled"`
	NeedsReview      int `json:"needs_review"`
	Alarmed          int `json:"alarmed"`
	MissingInGateway int `json:"missing_in_gateway"`
	MissingInVault   int `json:"missing_in_vault"`
	MissingInBoth    int `json:"missing_in_both"`
}

// ActionGroup holds every row that requires the same action.
type ActionGroup struct {
	Action   Action      `json:"action"`
	Priority int         `json:"priority"`
	Rows     []ReportRow `json:"-"`
}

// Count returns the number of rows in the group.
func (g ActionGroup) Count() int { return len(g.Rows) }

func (g ActionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action   Action `json:"action"`
		Priority int    `json:"priority"`
		Count    int    `json:"count"`
	}{g.Action, g.Priority, g.Count()})
}

// ComboGroup holds every row sharing the same resolved status triple.
type ComboGroup struct {
	Statuses StatusTriple `json:"statuses"`
	Rows     []ReportRow  `json:"-"`
}

// Count returns the number of rows in the group.
func (g ComboGroup) Count() int { return len(g.Rows) }

func (g ComboGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Statuses StatusTriple `json:"statuses"`
		Count    int          `json:"count"`
	}{g.Statuses, g.Count()})
}

// Aggregation is the grouped view over a run's report rows.
type Aggregation struct {
	Summary      Summary       `json:"summary"`
	ActionGroups []ActionGroup `json:"action_groups"`
	ComboGroups  []ComboGroup  `json:"combo_groups"`
}

// Sheet is one named output table. Cell values are strings or numbers.
type Sheet struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
	Rows   [][]any  `json:"-"`
}

// ReconciliationReport is the top-level result of a run.
type ReconciliationReport struct {
	RunID       string      `json:"run_id"`
	Rows        []ReportRow `json:"-"`
	Aggregation Aggregation `json:"aggregation"`
	Sheets      []Sheet     `json:"-"`
}
