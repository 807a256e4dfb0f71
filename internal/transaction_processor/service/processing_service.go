package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ProcessingServiceImpl struct {
	db             persistence.TxRunner
	validator      TransactionValidator
	accountManager AccountManager
	resources      ResourceLedger
	records        RecordKeeper
	outboxManager  OutboxManager
	logger         *slog.Logger
	now            func() time.Time
}

func NewProcessingService(
	db persistence.TxRunner,
	validator TransactionValidator,
	accountManager AccountManager,
	resources ResourceLedger,
	records RecordKeeper,
	outboxManager OutboxManager,
	logger *slog.Logger,
) *ProcessingServiceImpl {
	return &ProcessingServiceImpl{
		db:             db,
		validator:      validator,
		accountManager: accountManager,
		resources:      resources,
		records:        records,
		outboxManager:  outboxManager,
		logger:         logger,
		now:            time.Now,
	}
}

// Deposit credits amount to acc and adds the same amount to the machine's cash
func (s *ProcessingServiceImpl) Deposit(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error) {
	log := logger.FromContext(ctx, s.logger).With("operation", "deposit", "account_id", acc.ID, "amount", amount.String())

	if err := s.validator.ValidateAmount(amount); err != nil {
		log.Warn("Deposit rejected", "reason", FailureReasonFor(err))
		return nil, err
	}

	now := s.now().UTC()
	var balance decimal.Decimal

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.accountManager.Lock(ctx, tx, acc.ID); err != nil {
			return err
		}
		state, err := s.resources.LockState(ctx, tx)
		if err != nil {
			return err
		}

		if balance, err = s.accountManager.ApplyDelta(ctx, tx, acc.ID, amount); err != nil {
			return err
		}
		cash, err := s.resources.AddCash(ctx, tx, amount)
		if err != nil {
			return err
		}

		record := transaction.NewRecord(acc.ID, transaction.TypeDeposit, amount, now)
		if err := s.records.Append(ctx, tx, record); err != nil {
			return err
		}

		event := s.newEvent(ctx, journal.KindDeposit, record, balance, now)
		event.MachineCash, event.Paper, event.Ink = cash, state.Paper, state.Ink
		return s.outboxManager.CreateOutboxEntry(ctx, tx, event)
	})
	if err != nil {
		return nil, s.fail(log, "Deposit", err)
	}

	acc.Refresh(balance, now)
	log.Info("Deposit committed", "balance", balance.String())
	return &Result{Success: true, Balance: balance}, nil
}

// Withdraw debits amount from acc and dispenses it from the machine's cash.
// Balance, cash, paper and ink are checked in that order against locked rows.
func (s *ProcessingServiceImpl) Withdraw(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error) {
	log := logger.FromContext(ctx, s.logger).With("operation", "withdraw", "account_id", acc.ID, "amount", amount.String())

	if err := s.validator.ValidateAmount(amount); err != nil {
		log.Warn("Withdrawal rejected", "reason", FailureReasonFor(err))
		return nil, err
	}

	now := s.now().UTC()
	var balance decimal.Decimal

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.accountManager.Lock(ctx, tx, acc.ID)
		if err != nil {
			return err
		}
		state, err := s.resources.LockState(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateWithdrawal(locked, state, amount); err != nil {
			return err
		}

		if balance, err = s.accountManager.ApplyDelta(ctx, tx, acc.ID, amount.Neg()); err != nil {
			return err
		}
		cash, err := s.resources.DecrementCashForWithdrawal(ctx, tx, amount)
		if err != nil {
			return err
		}

		record := transaction.NewRecord(acc.ID, transaction.TypeWithdraw, amount, now)
		if err := s.records.Append(ctx, tx, record); err != nil {
			return err
		}

		event := s.newEvent(ctx, journal.KindWithdraw, record, balance, now)
		event.MachineCash, event.Paper, event.Ink = cash, state.Paper, state.Ink
		return s.outboxManager.CreateOutboxEntry(ctx, tx, event)
	})
	if err != nil {
		return nil, s.fail(log, "Withdrawal", err)
	}

	acc.Refresh(balance, now)
	log.Info("Withdrawal committed", "balance", balance.String())
	return &Result{Success: true, Balance: balance}, nil
}

// Transfer moves amount from acc to the account holding toCard. Machine cash is untouched.
// A transfer to the sender's own card nets to zero but still writes both records.
func (s *ProcessingServiceImpl) Transfer(ctx context.Context, acc *account.Account, toCard string, amount decimal.Decimal) (*Result, error) {
	log := logger.FromContext(ctx, s.logger).With(
		"operation", "transfer",
		"account_id", acc.ID,
		"target_card", logger.MaskCard(toCard),
		"amount", amount.String(),
	)

	if err := s.validator.ValidateAmount(amount); err != nil {
		log.Warn("Transfer rejected", "reason", FailureReasonFor(err))
		return nil, err
	}

	now := s.now().UTC()
	var senderBalance decimal.Decimal

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		sender, receiver, err := s.accountManager.LockTransferPair(ctx, tx, acc.ID, toCard)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateTransfer(sender, amount); err != nil {
			return err
		}

		outBalance, err := s.accountManager.ApplyDelta(ctx, tx, sender.ID, amount.Neg())
		if err != nil {
			return err
		}
		inBalance, err := s.accountManager.ApplyDelta(ctx, tx, receiver.ID, amount)
		if err != nil {
			return err
		}
		senderBalance = outBalance
		if receiver.ID == sender.ID {
			senderBalance = inBalance
		}

		out, in := transaction.NewTransferPair(sender.ID, receiver.ID, amount, now)
		if err := s.records.Append(ctx, tx, out, in); err != nil {
			return err
		}

		outEvent := s.newEvent(ctx, journal.KindTransferOut, out, outBalance, now)
		outEvent.Counterparty = receiver.ID
		inEvent := s.newEvent(ctx, journal.KindTransferIn, in, inBalance, now)
		inEvent.Counterparty = sender.ID
		return s.outboxManager.CreateOutboxEntry(ctx, tx, outEvent, inEvent)
	})
	if err != nil {
		return nil, s.fail(log, "Transfer", err)
	}

	acc.Refresh(senderBalance, now)
	log.Info("Transfer committed", "balance", senderBalance.String())
	return &Result{Success: true, Balance: senderBalance}, nil
}

func (s *ProcessingServiceImpl) newEvent(ctx context.Context, kind journal.Kind, record *transaction.Record, balance decimal.Decimal, at time.Time) *journal.Event {
	event := journal.NewEvent(kind, record.AccountID, record.Amount, at)
	recordID := record.ID
	event.RecordID = &recordID
	event.BalanceAfter = balance
	event.CorrelationID = logger.CorrelationID(ctx)
	return event
}

// fail logs a rolled-back operation and wraps infrastructure errors in ErrStorageFailure
func (s *ProcessingServiceImpl) fail(log *slog.Logger, op string, err error) error {
	if isRejection(err) {
		log.Warn(op+" rejected", "reason", FailureReasonFor(err), "error", err)
		return err
	}
	log.Error(op+" rolled back", "error", err)
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
