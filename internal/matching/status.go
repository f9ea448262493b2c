package matching

import (
	"strings"

	"ledger-reconciliation/internal/domain"
)

// ResolveStatus returns the counterpart's raw status for rawKey, unmodified,
// or sentinel when the counterpart has no status column or no matching row.
func ResolveStatus(rawKey string, idx *Index, sentinel string) string {
	if !idx.HasStatus() {
		return sentinel
	}
	if status, ok := idx.LookupStatus(NormalizeKey(rawKey)); ok {
		return status
	}
	return sentinel
}

// OwnStatus resolves the order axis from the row itself.
func OwnStatus(status string, hasStatusColumn bool) string {
	if !hasStatusColumn || isBlank(status) {
		return domain.StatusMissing
	}
	return status
}

// ResolveTriple builds the status triple for one order row.
func ResolveTriple(o domain.OrderRecord, hasOrderStatus bool, gateway, vault *Index) domain.StatusTriple {
	return domain.StatusTriple{
		Order:   OwnStatus(o.Status, hasOrderStatus),
		Gateway: ResolveStatus(o.OrderKey, gateway, domain.StatusMissing),
		Vault:   ResolveStatus(o.TransactionKey, vault, domain.VaultStatusMissing),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
