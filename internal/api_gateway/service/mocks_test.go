package service

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/transaction_processor/components"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) Deposit(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*processor.Result, error) {
	args := m.Called(ctx, acc, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Result), args.Error(1)
}

func (m *MockProcessingService) Withdraw(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*processor.Result, error) {
	args := m.Called(ctx, acc, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Result), args.Error(1)
}

func (m *MockProcessingService) Transfer(ctx context.Context, acc *account.Account, toCardNumber string, amount decimal.Decimal) (*processor.Result, error) {
	args := m.Called(ctx, acc, toCardNumber, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Result), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, cardNumber, pin string) (*account.Account, error) {
	args := m.Called(ctx, cardNumber, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockReceiptPrinter struct {
	mock.Mock
}

func (m *MockReceiptPrinter) PrintReceipt(ctx context.Context, req components.ReceiptRequest) *components.Receipt {
	return m.Called(ctx, req).Get(0).(*components.Receipt)
}
