package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations
type Repository interface {
	GetByID(ctx context.Context, id string) (*Account, error)

	// FindByCredentials returns found=false when no account matches both card and PIN
	FindByCredentials(ctx context.Context, cardNumber, pin string) (acc *Account, found bool, err error)
	FindByCardNumber(ctx context.Context, cardNumber string) (acc *Account, found bool, err error)

	// LockForUpdate acquires a row lock for the rest of the enclosing transaction
	LockForUpdate(ctx context.Context, id string) (*Account, error)

	// AdjustBalance adds delta to the balance and returns the resulting balance
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
	ResetFailedAttempts(ctx context.Context, id string) error
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID
}

// Is matches any ErrAccountNotFound when the target carries no account id
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == "" {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrNegativeBalance is returned when the store refuses a balance below zero
var ErrNegativeBalance = errors.New("balance would become negative")
