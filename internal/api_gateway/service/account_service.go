package service

import (
	"context"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/transaction"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo     account.Repository
	transactionRepo transaction.Repository
}

func NewAccountService(accountRepo account.Repository, transactionRepo transaction.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// GetAccountDetails reads the account without changing it, so repeated calls agree
func (s *AccountServiceImpl) GetAccountDetails(ctx context.Context, accountID string) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

func (s *AccountServiceImpl) GetTransactionHistory(ctx context.Context, accountID string, page, perPage int) ([]*transaction.Record, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.transactionRepo.ListByAccount(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactionRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
