package domain

import "strings"

// Source identifies one of the three ledgers taking part in a reconciliation.
type Source string

const (
	SourceOrder   Source = "order"
	SourceGateway Source = "gateway"
	SourceVault   Source = "vault"
)

// Sentinels substituted when a status cannot be determined. The vault axis
// uses the lower-case form.
const (
	StatusMissing      = "MISSING"
	VaultStatusMissing = "missing"
)

// Table is a raw input table as materialized from a file: a header row and
// data rows in file order. Rows may be shorter than the header.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
// Header names are compared after trimming surrounding whitespace.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, col), or "" when col is negative or the
// row is ragged.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// OrderRecord is one row of the order ledger.
type OrderRecord struct {
	Row            int    `json:"row"`
	OrderKey       string `json:"order_key"`
	TransactionKey string `json:"transaction_key"`
	Status         string `json:"status"`

	// Passthrough holds every original cell, padded to the header width.
	// It is carried to the output only and never read by matching logic.
	Passthrough []string `json:"-"`
}

// Linkage records whether an order row was found in each counterpart.
type Linkage struct {
	InGateway bool `json:"in_gateway"`
	InVault   bool `json:"in_vault"`
}

// Alarmed reports whether the row is absent from at least one counterpart.
func (l Linkage) Alarmed() bool {
	return !l.InGateway || !l.InVault
}

// StatusTriple holds the resolved, not yet canonicalized, status per axis.
type StatusTriple struct {
	Order   string `json:"order_status"`
	Gateway string `json:"gateway_status"`
	Vault   string `json:"vault_status"`
}
