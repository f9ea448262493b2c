package classifier

import (
	"strings"

	"ledger-reconciliation/internal/domain"
)

// Uncategorized is returned when no rule matches.
var Uncategorized = domain.Classification{
	Category: domain.CategoryUncategorized,
	Action:   domain.ActionInvestigate,
	Priority: domain.PriorityInvestigate,
}

// DefaultRules returns the decision table in evaluation order. Order is
// semantics: "not cancelled" also contains "cancelled", so the reconciled
// rule must precede the refund rule.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "fully_reconciled",
			Match: func(s Statuses) bool {
				return paidOrActive(s.Order) && s.Gateway == "SUCCESS" && strings.Contains(s.Vault, "not cancelled")
			},
			Result: result(domain.CategoryFullyReconciled, domain.ActionNoAction, domain.PriorityNoAction),
		},
		{
			Name: "refund_required",
			Match: func(s Statuses) bool {
				return paidOrActive(s.Order) && s.Gateway == "SUCCESS" && strings.Contains(s.Vault, "cancelled")
			},
			Result: result(domain.CategoryRefundRequired, domain.ActionRefundRequired, domain.PriorityCritical),
		},
		{
			Name: "sync_pending",
			Match: func(s Statuses) bool {
				return s.Order == "PENDING" && s.Gateway == "SUCCESS" && strings.Contains(s.Vault, "not cancelled")
			},
			Result: result(domain.CategorySyncPending, domain.ActionSyncMonitor, domain.PriorityMonitor),
		},
		{
			Name: "gateway_success_internal_fail",
			Match: func(s Statuses) bool {
				return s.Order == "FAILED" && s.Gateway == "SUCCESS" && strings.Contains(s.Vault, "not cancelled")
			},
			Result: result(domain.CategoryGatewaySuccessInternalFail, domain.ActionInvestigate, domain.PriorityInvestigate),
		},
		{
			Name:   "payment_failed",
			Match:  func(s Statuses) bool { return s.Gateway == "FAILED" },
			Result: result(domain.CategoryPaymentFailed, domain.ActionIgnore, domain.PriorityNoAction),
		},
		{
			Name: "user_dropped",
			Match: func(s Statuses) bool {
				return strings.Contains(s.Gateway, "USER") && strings.Contains(s.Gateway, "DROP")
			},
			Result: result(domain.CategoryUserDropped, domain.ActionIgnore, domain.PriorityNoAction),
		},
		{
			Name:   "payment_in_progress",
			Match:  func(s Statuses) bool { return s.Order == "PENDING" && s.Gateway == "PENDING" },
			Result: result(domain.CategoryPaymentInProgress, domain.ActionWaitRetry, domain.PriorityMonitor),
		},
		{
			// Shadowed by payment_failed; kept so the table reads as authored.
			Name:   "order_active_payment_failed",
			Match:  func(s Statuses) bool { return s.Order == "ACTIVE" && s.Gateway == "FAILED" },
			Result: result(domain.CategoryOrderActivePaymentFailed, domain.ActionCancelOrder, domain.PriorityInvestigate),
		},
		{
			// Shadowed by payment_failed as well.
			Name:   "inconsistent_state",
			Match:  func(s Statuses) bool { return s.Order == "PAID" && s.Gateway == "FAILED" },
			Result: result(domain.CategoryInconsistentState, domain.ActionInvestigate, domain.PriorityCritical),
		},
		{
			Name:   "payment_success_order_missing",
			Match:  func(s Statuses) bool { return s.Gateway == "SUCCESS" && s.Vault == domain.VaultStatusMissing },
			Result: result(domain.CategoryPaymentSuccessOrderMissing, domain.ActionInvestigateCreate, domain.PriorityCritical),
		},
		{
			Name:   "payment_not_confirmed",
			Match:  func(s Statuses) bool { return s.Gateway == "PENDING" },
			Result: result(domain.CategoryPaymentNotConfirmed, domain.ActionWaitRetry, domain.PriorityMonitor),
		},
		{
			Name:   "internal_failure",
			Match:  func(s Statuses) bool { return s.Order == "FAILED" },
			Result: result(domain.CategoryInternalFailure, domain.ActionInvestigate, domain.PriorityInvestigate),
		},
	}
}

func paidOrActive(order string) bool {
	return order == "PAID" || order == "ACTIVE"
}

func result(c domain.Category, a domain.Action, p int) domain.Classification {
	return domain.Classification{Category: c, Action: a, Priority: p}
}
