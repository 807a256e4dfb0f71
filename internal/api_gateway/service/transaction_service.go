package service

import (
	"context"
	"log/slog"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/components"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	accountRepo account.Repository
	processor   processor.ProcessingService
	receipts    ReceiptPrinter
	logger      *slog.Logger
}

func NewTransactionService(
	logger *slog.Logger,
	accountRepo account.Repository,
	processingService processor.ProcessingService,
	receipts ReceiptPrinter,
) TransactionService {
	return &TransactionServiceImpl{
		accountRepo: accountRepo,
		processor:   processingService,
		receipts:    receipts,
		logger:      logger,
	}
}

func (s *TransactionServiceImpl) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error) {
	acc, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.processor.Deposit(ctx, acc, amount)
}

func (s *TransactionServiceImpl) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error) {
	acc, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.processor.Withdraw(ctx, acc, amount)
}

func (s *TransactionServiceImpl) Transfer(ctx context.Context, accountID, toCardNumber string, amount decimal.Decimal) (*processor.Result, error) {
	acc, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.processor.Transfer(ctx, acc, toCardNumber, amount)
}

func (s *TransactionServiceImpl) PrintReceipt(ctx context.Context, req components.ReceiptRequest) *components.Receipt {
	return s.receipts.PrintReceipt(ctx, req)
}

func (s *TransactionServiceImpl) load(ctx context.Context, accountID string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Failed to load session account", "account_id", accountID, "error", err)
		return nil, err
	}
	return acc, nil
}
