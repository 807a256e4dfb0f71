package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive with at most 2 decimal places")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrAuthentication      = errors.New("card number or PIN is incorrect")
)

// Account is a cardholder account as held by the ledger store
type Account struct {
	ID             string          `json:"account_id"`
	CardNumber     string          `json:"card_number"`
	PIN            string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	FailedAttempts int             `json:"failed_attempts"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MaxScale is the number of decimal places a money amount may carry.
// The ledger columns store NUMERIC(19, 4), so every accepted amount is stored exactly.
const MaxScale = 2

// ValidateAmount rejects zero, negative and sub-cent amounts
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(MaxScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// CanWithdraw reports whether the balance covers amount
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// CheckSufficientBalance returns ErrInsufficientBalance when amount exceeds the balance
func (a *Account) CheckSufficientBalance(amount decimal.Decimal) error {
	if !a.CanWithdraw(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// Refresh replaces the in-memory balance with a committed one
func (a *Account) Refresh(balance decimal.Decimal, at time.Time) {
	a.Balance = balance
	a.UpdatedAt = at
}
