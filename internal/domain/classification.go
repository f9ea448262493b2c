package domain

// Category names the kind of disagreement between the three ledgers.
type Category string

const (
	CategoryFullyReconciled            Category = "FULLY_RECONCILED"
	CategoryRefundRequired             Category = "REFUND_REQUIRED"
	CategorySyncPending                Category = "SYNC_PENDING"
	CategoryGatewaySuccessInternalFail Category = "GATEWAY_SUCCESS_INTERNAL_FAIL"
	CategoryPaymentFailed              Category = "PAYMENT_FAILED"
	CategoryUserDropped                Category = "USER_DROPPED"
	CategoryPaymentInProgress          Category = "PAYMENT_IN_PROGRESS"
	CategoryOrderActivePaymentFailed   Category = "ORDER_ACTIVE_PAYMENT_FAILED"
	CategoryInconsistentState          Category = "INCONSISTENT_STATE"
	CategoryPaymentSuccessOrderMissing Category = "PAYMENT_SUCCESS_ORDER_MISSING"
	CategoryPaymentNotConfirmed        Category = "PAYMENT_NOT_CONFIRMED"
	CategoryInternalFailure            Category = "INTERNAL_FAILURE"
	CategoryUncategorized              Category = "UNCATEGORIZED"
)

// Action is the operator action required for a category.
type Action string

const (
	ActionNoAction          Action = "NO ACTION"
	ActionRefundRequired    Action = "REFUND REQUIRED"
	ActionSyncMonitor       Action = "SYNC / MONITOR"
	ActionInvestigate       Action = "INVESTIGATE"
	ActionIgnore            Action = "IGNORE"
	ActionWaitRetry         Action = "WAIT / RETRY"
	ActionCancelOrder       Action = "CANCEL ORDER"
	ActionInvestigateCreate Action = "INVESTIGATE / CREATE ORDER"
)

// Priority levels, rising with severity.
const (
	PriorityNoAction    = 1
	PriorityMonitor     = 2
	PriorityInvestigate = 3
	PriorityCritical    = 4
)

// Classification is the outcome of the decision table for one status triple.
type Classification struct {
	Category Category `json:"category"`
	Action   Action   `json:"action"`
	Priority int      `json:"priority"`
}

// ReportRow is an order row enriched with linkage, statuses and classification.
type ReportRow struct {
	Order          OrderRecord    `json:"order"`
	Linkage        Linkage        `json:"linkage"`
	Statuses       StatusTriple   `json:"statuses"`
	Classification Classification `json:"classification"`
}
