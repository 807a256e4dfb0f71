package shared

// FailureReason is the stable code reported for a rejected ATM operation
type FailureReason string

const (
	FailureReasonInvalidAmount           FailureReason = "INVALID_AMOUNT"
	FailureReasonAuthFailed              FailureReason = "AUTH_FAILED"
	FailureReasonAccountNotFound         FailureReason = "NOT_FOUND"
	FailureReasonTargetNotFound          FailureReason = "TARGET_NOT_FOUND"
	FailureReasonInsufficientBalance     FailureReason = "INSUFFICIENT_BALANCE"
	FailureReasonInsufficientMachineCash FailureReason = "INSUFFICIENT_MACHINE_CASH"
	FailureReasonOutOfPaper              FailureReason = "OUT_OF_PAPER"
	FailureReasonOutOfInk                FailureReason = "OUT_OF_INK"
	FailureReasonUnsupported             FailureReason = "UNSUPPORTED"
	FailureReasonStorageFailure          FailureReason = "STORAGE_FAILURE"
	FailureReasonUnknownError            FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
