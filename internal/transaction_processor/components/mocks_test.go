package components

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Repository mocks return themselves from WithTx so expectations are set in one place

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) FindByCredentials(ctx context.Context, cardNumber, pin string) (*account.Account, bool, error) {
	args := m.Called(ctx, cardNumber, pin)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) FindByCardNumber(ctx context.Context, cardNumber string) (*account.Account, bool, error) {
	args := m.Called(ctx, cardNumber)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) LockForUpdate(ctx context.Context, id string) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepo) ResetFailedAttempts(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountRepo) WithTx(pgx.Tx) account.Repository {
	return m
}

type MockMachineRepo struct {
	mock.Mock
}

func (m *MockMachineRepo) Get(ctx context.Context) (*machine.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockMachineRepo) LockForUpdate(ctx context.Context) (*machine.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockMachineRepo) AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMachineRepo) ConsumeSupplies(ctx context.Context, paper, ink int) (*machine.State, error) {
	args := m.Called(ctx, paper, ink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockMachineRepo) WithTx(pgx.Tx) machine.Repository {
	return m
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, record *transaction.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTransactionRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Record, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Record), args.Error(1)
}

func (m *MockTransactionRepo) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(pgx.Tx) transaction.Repository {
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) WithTx(pgx.Tx) outbox.Repository {
	return m
}

// fakeTxRunner runs fn with a nil transaction
type fakeTxRunner struct {
	err        error
	committed  int
	rolledBack int
}

func (r *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if r.err != nil {
		return r.err
	}
	if err := fn(nil); err != nil {
		r.rolledBack++
		return err
	}
	r.committed++
	return nil
}

// eventsOf decodes the journal events carried by outbox messages passed to Create
func eventsOf(m *MockOutboxRepo) []*journal.Event {
	var events []*journal.Event
	for _, call := range m.Calls {
		if call.Method != "Create" {
			continue
		}
		event, err := call.Arguments.Get(1).(*outbox.Message).Event()
		if err == nil {
			events = append(events, event)
		}
	}
	return events
}
