package service

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockTransactionValidator struct {
	mock.Mock
}

func (m *MockTransactionValidator) ValidateAmount(amount decimal.Decimal) error {
	return m.Called(amount).Error(0)
}

func (m *MockTransactionValidator) ValidateWithdrawal(acc *account.Account, state *machine.State, amount decimal.Decimal) error {
	return m.Called(acc, state, amount).Error(0)
}

func (m *MockTransactionValidator) ValidateTransfer(sender *account.Account, amount decimal.Decimal) error {
	return m.Called(sender, amount).Error(0)
}

type MockAccountManager struct {
	mock.Mock
}

func (m *MockAccountManager) Lock(ctx context.Context, tx pgx.Tx, accountID string) (*account.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountManager) LockTransferPair(ctx context.Context, tx pgx.Tx, senderID, receiverCard string) (*account.Account, *account.Account, error) {
	args := m.Called(ctx, tx, senderID, receiverCard)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Get(1).(*account.Account), args.Error(2)
}

func (m *MockAccountManager) ApplyDelta(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, accountID, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockResourceLedger struct {
	mock.Mock
}

func (m *MockResourceLedger) CurrentState(ctx context.Context) (*machine.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockResourceLedger) LockState(ctx context.Context, tx pgx.Tx) (*machine.State, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockResourceLedger) AddCash(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockResourceLedger) DecrementCashForWithdrawal(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockResourceLedger) ConsumeSupplies(ctx context.Context, tx pgx.Tx) (*machine.State, []machine.SupplyWarning, error) {
	args := m.Called(ctx, tx)
	var warnings []machine.SupplyWarning
	if w, ok := args.Get(1).([]machine.SupplyWarning); ok {
		warnings = w
	}
	if args.Get(0) == nil {
		return nil, warnings, args.Error(2)
	}
	return args.Get(0).(*machine.State), warnings, args.Error(2)
}

type MockRecordKeeper struct {
	mock.Mock
}

func (m *MockRecordKeeper) Append(ctx context.Context, tx pgx.Tx, records ...*transaction.Record) error {
	return m.Called(ctx, tx, records).Error(0)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, events ...*journal.Event) error {
	return m.Called(ctx, tx, events).Error(0)
}

// fakeTxRunner runs fn with a nil transaction and remembers how the unit ended
type fakeTxRunner struct {
	begun      int
	committed  int
	rolledBack int
}

func (r *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	r.begun++
	if err := fn(nil); err != nil {
		r.rolledBack++
		return err
	}
	r.committed++
	return nil
}
