package postgres

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	msg, err := outbox.NewMessage(journal.NewEvent(journal.KindDeposit, "ACC001", dec("250"), time.Now()))
	require.NoError(t, err)
	query := `INSERT INTO atm_outbox \(event_id, account_id, payload, status, attempts, created_at\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(msg.EventID, "ACC001", msg.Payload, shared.OutboxStatusPending, 0, msg.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(ctx, msg))
		assert.Equal(t, int64(42), msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate event", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(msg.EventID, "ACC001", msg.Payload, shared.OutboxStatusPending, 0, msg.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, msg)
		var dup outbox.ErrDuplicateMessage
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, msg.EventID, dup.EventID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	eventID := uuid.New()
	now := time.Now()
	query := `FROM atm_outbox WHERE status = \$1 ORDER BY created_at ASC, id ASC LIMIT \$2`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusPending, 100).
			WillReturnRows(pgxmock.NewRows([]string{"id", "event_id", "account_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
				AddRow(int64(7), eventID, "ACC002", []byte(`{"kind":"TRANSFER_IN"}`), shared.OutboxStatusPending, 1, now, nil))

		messages, err := repo.GetPending(ctx, 100)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, int64(7), messages[0].ID)
		assert.Equal(t, eventID, messages[0].EventID)
		assert.Equal(t, "ACC002", messages[0].AccountID)
		assert.Equal(t, 1, messages[0].Attempts)
		assert.Nil(t, messages[0].LastAttemptAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusPending, 100).WillReturnError(errors.New("conn closed"))

		messages, err := repo.GetPending(ctx, 100)
		assert.Nil(t, messages)
		assert.ErrorContains(t, err, "failed to get pending outbox messages")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatusAndAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectExec(`UPDATE atm_outbox SET status = \$1, last_attempt_at = \$2 WHERE id = \$3`).
		WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateStatus(ctx, 7, shared.OutboxStatusProcessed))

	mock.ExpectExec(`UPDATE atm_outbox SET status`).
		WithArgs(shared.OutboxStatusFailedToPublish, pgxmock.AnyArg(), int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 8, shared.OutboxStatusFailedToPublish), outbox.ErrMessageNotFound{ID: 8})

	mock.ExpectExec(`UPDATE atm_outbox SET attempts = attempts \+ 1, last_attempt_at = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementAttempts(ctx, 7))

	mock.ExpectExec(`UPDATE atm_outbox SET attempts`).
		WithArgs(pgxmock.AnyArg(), int64(7)).
		WillReturnError(errors.New("deadlock detected"))
	assert.ErrorContains(t, repo.IncrementAttempts(ctx, 7), "failed to increment outbox message attempts")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_WithTx(t *testing.T) {
	repo := &OutboxRepository{querier: nil, logger: slog.Default()}

	mockTx := pgx.Tx(nil)
	txRepo := repo.WithTx(mockTx)

	outboxRepo, ok := txRepo.(*OutboxRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, outboxRepo.querier)
}
