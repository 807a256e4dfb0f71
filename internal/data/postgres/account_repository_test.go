package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/platform/persistence/pgxtest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var accountCols = []string{"account_id", "card_number", "pin", "balance", "failed_attempts", "created_at", "updated_at"}

func accountRows(id, card, pin, balance string, failed int, at time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(accountCols).AddRow(id, card, pin, balance, failed, at, at)
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()
	query := `SELECT account_id, card_number, pin, balance, failed_attempts, created_at, updated_at FROM accounts WHERE account_id = \$1$`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC001").
			WillReturnRows(accountRows("ACC001", "1111", "1111", "5000.00", 0, now))

		acc, err := repo.GetByID(ctx, "ACC001")
		require.NoError(t, err)
		assert.Equal(t, "ACC001", acc.ID)
		assert.Equal(t, "1111", acc.CardNumber)
		assert.Equal(t, "5000", acc.Balance.String())
		assert.Equal(t, now, acc.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC404").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, "ACC404")
		assert.Nil(t, acc)
		var notFound account.ErrAccountNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "ACC404", notFound.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(query).WithArgs("ACC001").WillReturnError(dbErr)

		acc, err := repo.GetByID(ctx, "ACC001")
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to get account")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_FindByCredentials(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `FROM accounts WHERE card_number = \$1 AND pin = \$2`

	t.Run("match", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("2222", "2222").
			WillReturnRows(accountRows("ACC002", "2222", "2222", "3000", 2, time.Now()))

		acc, found, err := repo.FindByCredentials(ctx, "2222", "2222")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "ACC002", acc.ID)
		assert.Equal(t, 2, acc.FailedAttempts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong pin is not an error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("2222", "9999").WillReturnError(pgx.ErrNoRows)

		acc, found, err := repo.FindByCredentials(ctx, "2222", "9999")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("2222", "2222").WillReturnError(errors.New("timeout"))

		_, found, err := repo.FindByCredentials(ctx, "2222", "2222")
		assert.False(t, found)
		assert.ErrorContains(t, err, "failed to look up account by credentials")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_FindByCardNumber(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `FROM accounts WHERE card_number = \$1$`

	mock.ExpectQuery(query).WithArgs("2222").
		WillReturnRows(accountRows("ACC002", "2222", "2222", "3000", 0, time.Now()))
	acc, found, err := repo.FindByCardNumber(ctx, "2222")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ACC002", acc.ID)

	mock.ExpectQuery(query).WithArgs("7777").WillReturnError(pgx.ErrNoRows)
	acc, found, err = repo.FindByCardNumber(ctx, "7777")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, acc)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `FROM accounts WHERE account_id = \$1 FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC001").
			WillReturnRows(accountRows("ACC001", "1111", "1111", "5000", 0, time.Now()))

		acc, err := repo.LockForUpdate(ctx, "ACC001")
		require.NoError(t, err)
		assert.Equal(t, "5000", acc.Balance.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ACC404").WillReturnError(pgx.ErrNoRows)

		_, err := repo.LockForUpdate(ctx, "ACC404")
		assert.ErrorIs(t, err, account.ErrAccountNotFound{AccountID: "ACC404"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE accounts SET balance = balance \+ \$1, updated_at = NOW\(\) WHERE account_id = \$2 RETURNING balance`

	t.Run("credit", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(pgxtest.Decimal("250"), "ACC001").
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("5250.00"))

		balance, err := repo.AdjustBalance(ctx, "ACC001", dec("250"))
		require.NoError(t, err)
		assert.Equal(t, "5250", balance.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overdraft rejected by constraint", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(pgxtest.Decimal("-9000"), "ACC001").
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "accounts_balance_check"})

		_, err := repo.AdjustBalance(ctx, "ACC001", dec("-9000"))
		assert.ErrorIs(t, err, account.ErrNegativeBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(pgxtest.Decimal("10"), "ACC404").WillReturnError(pgx.ErrNoRows)

		_, err := repo.AdjustBalance(ctx, "ACC404", dec("10"))
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_ResetFailedAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE accounts SET failed_attempts = 0, updated_at = NOW\(\) WHERE account_id = \$1`

	mock.ExpectExec(query).WithArgs("ACC001").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.ResetFailedAttempts(ctx, "ACC001"))

	mock.ExpectExec(query).WithArgs("ACC404").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.ResetFailedAttempts(ctx, "ACC404"), account.ErrAccountNotFound{})

	dbErr := errors.New("read-only transaction")
	mock.ExpectExec(query).WithArgs("ACC001").WillReturnError(dbErr)
	assert.ErrorIs(t, repo.ResetFailedAttempts(ctx, "ACC001"), dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_WithTx(t *testing.T) {
	repo := &AccountRepository{querier: nil, logger: slog.Default()}
	mockTx := pgx.Tx(nil)

	txRepo, ok := repo.WithTx(mockTx).(*AccountRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, txRepo.querier)
	assert.Equal(t, repo.logger, txRepo.logger)
}
