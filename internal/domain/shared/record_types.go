package shared

// RecordKind defines the kinds of balance movements the engine performs
type RecordKind string

const (
	RecordKindPurchase   RecordKind = "PURCHASE"
	RecordKindExchange   RecordKind = "EXCHANGE"
	RecordKindDeposit    RecordKind = "DEPOSIT"
	RecordKindWithdrawal RecordKind = "WITHDRAWAL"
)

// Valid reports whether k is one of the known record kinds
func (k RecordKind) Valid() bool {
	switch k {
	case RecordKindPurchase, RecordKindExchange, RecordKindDeposit, RecordKindWithdrawal:
		return true
	}
	return false
}

// RecordStatus defines the terminal states a persisted record may carry.
// Operations are synchronous; no PENDING state is ever persisted.
type RecordStatus string

const (
	RecordStatusCommitted RecordStatus = "COMMITTED"
	RecordStatusFailed    RecordStatus = "FAILED"
)

// FailureReason defines audit categories for failed operations
type FailureReason string

const (
	FailureReasonAccountNotFound   FailureReason = "ACCOUNT_NOT_FOUND"
	FailureReasonUnknownCurrency   FailureReason = "UNKNOWN_CURRENCY"
	FailureReasonInvalidConversion FailureReason = "INVALID_CONVERSION"
	FailureReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonInvalidAmount     FailureReason = "INVALID_AMOUNT"
	FailureReasonLockTimeout       FailureReason = "LOCK_TIMEOUT"
	FailureReasonStoreUnavailable  FailureReason = "STORE_UNAVAILABLE"
)

// OutboxStatus defines record event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
