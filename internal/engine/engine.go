// Package engine runs one reconciliation pass over the three ledgers:
// validation, linkage, status resolution, classification and aggregation.
package engine

import (
	"errors"
	"fmt"

	"ledger-reconciliation/internal/classifier"
	"ledger-reconciliation/internal/domain"
	"ledger-reconciliation/internal/matching"
)

var errNoTable = errors.New("table was not materialized")

// Inputs are the three raw tables of one run.
type Inputs struct {
	Order   *domain.Table
	Gateway *domain.Table
	Vault   *domain.Table
}

// Engine is safe for concurrent use; each Run works only on its inputs.
type Engine struct {
	cfg        Config
	classifier *classifier.Classifier
}

// New builds an engine from cfg. The config is copied.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	cls, err := classifier.New(classifier.WithPriorities(cfg.Priorities))
	if err != nil {
		return nil, fmt.Errorf("invalid priority table: %w", err)
	}
	return &Engine{cfg: cfg.clone(), classifier: cls}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// Run reconciles the inputs. Input-shape problems fail the whole run before
// any linkage; nothing past validation can fail.
func (e *Engine) Run(in Inputs) (*domain.ReconciliationReport, error) {
	if err := e.Validate(in); err != nil {
		return nil, err
	}

	orders, hasOrderStatus := extractOrders(in.Order, e.cfg.Order)
	gatewayIdx := buildIndex(in.Gateway, e.cfg.Gateway.OrderKey, e.cfg.Gateway.Status)
	vaultIdx := buildIndex(in.Vault, e.cfg.Vault.TransactionKey, e.cfg.Vault.Status)

	links := matching.Link(orders, gatewayIdx, vaultIdx)

	rows := make([]domain.ReportRow, len(orders))
	for i, o := range orders {
		statuses := matching.ResolveTriple(o, hasOrderStatus, gatewayIdx, vaultIdx)
		rows[i] = domain.ReportRow{
			Order:          o,
			Linkage:        links[i],
			Statuses:       statuses,
			Classification: e.classifier.ClassifyTriple(statuses),
		}
	}

	report := &domain.ReconciliationReport{
		Rows:        rows,
		Aggregation: Aggregate(rows),
	}
	report.Sheets = BuildSheets(e.cfg, in, report)
	return report, nil
}

// Validate checks that every table materialized and carries its required
// key columns.
func (e *Engine) Validate(in Inputs) error {
	tables := []struct {
		source domain.Source
		label  string
		table  *domain.Table
	}{
		{domain.SourceOrder, e.cfg.Order.Label, in.Order},
		{domain.SourceGateway, e.cfg.Gateway.Label, in.Gateway},
		{domain.SourceVault, e.cfg.Vault.Label, in.Vault},
	}
	for _, t := range tables {
		if t.table == nil {
			ref := t.label
			if ref == "" {
				ref = string(t.source)
			}
			return &domain.MalformedInputError{Source: t.source, Ref: ref, Err: errNoTable}
		}
	}

	required := []struct {
		source domain.Source
		cols   SourceColumns
		table  *domain.Table
		column string
	}{
		{domain.SourceOrder, e.cfg.Order, in.Order, e.cfg.Order.TransactionKey},
		{domain.SourceOrder, e.cfg.Order, in.Order, e.cfg.Order.OrderKey},
		{domain.SourceGateway, e.cfg.Gateway, in.Gateway, e.cfg.Gateway.OrderKey},
		{domain.SourceVault, e.cfg.Vault, in.Vault, e.cfg.Vault.TransactionKey},
	}
	for _, r := range required {
		if !r.table.HasColumn(r.column) {
			return &domain.ValidationError{Source: r.source, Label: r.cols.Label, Column: r.column}
		}
	}
	return nil
}

func extractOrders(t *domain.Table, cols SourceColumns) ([]domain.OrderRecord, bool) {
	orderCol := t.ColumnIndex(cols.OrderKey)
	txnCol := t.ColumnIndex(cols.TransactionKey)
	statusCol := -1
	if cols.Status != "" {
		statusCol = t.ColumnIndex(cols.Status)
	}

	orders := make([]domain.OrderRecord, len(t.Rows))
	for i := range t.Rows {
		passthrough := make([]string, len(t.Columns))
		copy(passthrough, t.Rows[i])
		orders[i] = domain.OrderRecord{
			Row:            i,
			OrderKey:       t.Cell(i, orderCol),
			TransactionKey: t.Cell(i, txnCol),
			Status:         t.Cell(i, statusCol),
			Passthrough:    passthrough,
		}
	}
	return orders, statusCol >= 0
}

func buildIndex(t *domain.Table, keyColumn, statusColumn string) *matching.Index {
	keyCol := t.ColumnIndex(keyColumn)
	statusCol := -1
	if statusColumn != "" {
		statusCol = t.ColumnIndex(statusColumn)
	}

	entries := make([]matching.Entry, len(t.Rows))
	for i := range t.Rows {
		entries[i] = matching.Entry{
			Key:    t.Cell(i, keyCol),
			Status: t.Cell(i, statusCol),
		}
	}
	return matching.BuildIndex(entries, statusCol >= 0)
}
