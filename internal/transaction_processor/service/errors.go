package service

import (
	"errors"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/shared"
)

var (
	// ErrTargetNotFound is returned when no account holds the transfer's target card
	ErrTargetNotFound = errors.New("target account not found")

	// ErrStorageFailure wraps infrastructure errors after the unit was rolled back
	ErrStorageFailure = errors.New("storage failure")

	// ErrOperationUnsupported is returned by technician actions this machine does not perform
	ErrOperationUnsupported = errors.New("operation not supported")
)

// FailureReasonFor maps an operation error to its stable failure code
func FailureReasonFor(err error) shared.FailureReason {
	switch {
	case errors.Is(err, account.ErrInvalidAmount):
		return shared.FailureReasonInvalidAmount
	case errors.Is(err, account.ErrAuthentication):
		return shared.FailureReasonAuthFailed
	case errors.Is(err, ErrTargetNotFound):
		return shared.FailureReasonTargetNotFound
	case errors.Is(err, account.ErrAccountNotFound{}):
		return shared.FailureReasonAccountNotFound
	case errors.Is(err, account.ErrInsufficientBalance):
		return shared.FailureReasonInsufficientBalance
	case errors.Is(err, machine.ErrInsufficientMachineCash):
		return shared.FailureReasonInsufficientMachineCash
	case errors.Is(err, machine.ErrOutOfPaper):
		return shared.FailureReasonOutOfPaper
	case errors.Is(err, machine.ErrOutOfInk):
		return shared.FailureReasonOutOfInk
	case errors.Is(err, ErrOperationUnsupported):
		return shared.FailureReasonUnsupported
	case errors.Is(err, ErrStorageFailure):
		return shared.FailureReasonStorageFailure
	default:
		return shared.FailureReasonUnknownError
	}
}

// isRejection reports whether err is a business outcome rather than an infrastructure fault
func isRejection(err error) bool {
	switch FailureReasonFor(err) {
	case shared.FailureReasonStorageFailure, shared.FailureReasonUnknownError:
		return false
	}
	return true
}
