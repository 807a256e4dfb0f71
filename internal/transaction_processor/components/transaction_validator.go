package components

import (
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
)

// TransactionValidatorImpl checks operation preconditions. It has no side effects; the
// processor calls it with rows already locked for the current transaction.
type TransactionValidatorImpl struct{}

func NewTransactionValidator() service.TransactionValidator {
	return &TransactionValidatorImpl{}
}

func (v *TransactionValidatorImpl) ValidateAmount(amount decimal.Decimal) error {
	return account.ValidateAmount(amount)
}

// ValidateWithdrawal checks balance, then machine cash, then paper, then ink
func (v *TransactionValidatorImpl) ValidateWithdrawal(acc *account.Account, state *machine.State, amount decimal.Decimal) error {
	if err := account.ValidateAmount(amount); err != nil {
		return err
	}
	if err := acc.CheckSufficientBalance(amount); err != nil {
		return err
	}
	return state.CheckWithdrawal(amount)
}

func (v *TransactionValidatorImpl) ValidateTransfer(sender *account.Account, amount decimal.Decimal) error {
	if err := account.ValidateAmount(amount); err != nil {
		return err
	}
	return sender.CheckSufficientBalance(amount)
}
