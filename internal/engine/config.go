package engine

import (
	"fmt"

	"ledger-reconciliation/internal/domain"
)

// SourceColumns names the columns the engine reads from one source and how
// the source is labelled in output tables. Unused key columns stay empty.
type SourceColumns struct {
	Label          string
	Prefix         string
	OrderKey       string
	TransactionKey string
	Status         string
}

// Config is the immutable engine configuration.
type Config struct {
	Order   SourceColumns
	Gateway SourceColumns
	Vault   SourceColumns

	// Priorities overrides the decision table priority per category.
	Priorities map[domain.Category]int

	// ActionSheets adds one output sheet per required action.
	ActionSheets bool
}

// DefaultConfig returns the column layout of the reference exports.
func DefaultConfig() Config {
	return Config{
		Order: SourceColumns{
			Label:          "Order",
			Prefix:         "ORD",
			OrderKey:       "Order Id",
			TransactionKey: "Merchant Transaction ID",
			Status:         "Order Status",
		},
		Gateway: SourceColumns{
			Label:    "Gateway",
			Prefix:   "GW",
			OrderKey: "Order Id",
			Status:   "Transaction Status",
		},
		Vault: SourceColumns{
			Label:          "Vault",
			Prefix:         "VLT",
			TransactionKey: "Merchant Transaction Id",
			Status:         "Transaction Status",
		},
	}
}

func (c Config) validate() error {
	required := []struct {
		what, value string
	}{
		{"order ledger order key column", c.Order.OrderKey},
		{"order ledger transaction key column", c.Order.TransactionKey},
		{"gateway order key column", c.Gateway.OrderKey},
		{"vault transaction key column", c.Vault.TransactionKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must not be empty", r.what)
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	if c.Priorities != nil {
		out.Priorities = make(map[domain.Category]int, len(c.Priorities))
		for k, v := range c.Priorities {
			out.Priorities[k] = v
		}
	}
	return out
}
