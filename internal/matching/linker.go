package matching

import "ledger-reconciliation/internal/domain"

// Link checks each order row against the gateway index by order key and the
// vault index by transaction key. The result is parallel to orders.
func Link(orders []domain.OrderRecord, gateway, vault *Index) []domain.Linkage {
	links := make([]domain.Linkage, len(orders))
	for i, o := range orders {
		links[i] = domain.Linkage{
			InGateway: gateway.Contains(NormalizeKey(o.OrderKey)),
			InVault:   vault.Contains(NormalizeKey(o.TransactionKey)),
		}
	}
	return links
}
