package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `id, event_id, account_id, payload, status, attempts, created_at, last_attempt_at`

// OutboxRepository stores journal events in atm_outbox until the poller relays them
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{querier: db.Pool(), logger: logger}
}

// WithTx binds the repository to tx so the message commits with the change it describes
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger}
}

// Create queues message and fills in its id
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	const query = `INSERT INTO atm_outbox (event_id, account_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	row := r.querier.QueryRow(ctx, query,
		message.EventID, message.AccountID, message.Payload,
		message.Status, message.Attempts, message.CreatedAt)
	if err := row.Scan(&message.ID); err != nil {
		if isUniqueViolation(err) {
			return outbox.ErrDuplicateMessage{EventID: message.EventID}
		}
		r.logger.Error("Failed to queue journal event", "event_id", message.EventID.String(), "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// GetPending returns up to limit PENDING messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	const query = `SELECT ` + outboxColumns + ` FROM atm_outbox
		WHERE status = $1 ORDER BY created_at ASC, id ASC LIMIT $2`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to query pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*outbox.Message, error) {
		m := &outbox.Message{}
		err := row.Scan(&m.ID, &m.EventID, &m.AccountID, &m.Payload, &m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt)
		return m, err
	})
	if err != nil {
		r.logger.Error("Failed to read pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	return messages, nil
}

// UpdateStatus records a terminal status and the time of the attempt
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return r.touch(ctx, id, "update outbox message status",
		`UPDATE atm_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`,
		status, time.Now(), id)
}

// IncrementAttempts counts one failed publish
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.touch(ctx, id, "increment outbox message attempts",
		`UPDATE atm_outbox SET attempts = attempts + 1, last_attempt_at = $1 WHERE id = $2`,
		time.Now(), id)
}

// touch runs a single-row update and reports a missing row as ErrMessageNotFound
func (r *OutboxRepository) touch(ctx context.Context, id int64, op, query string, args ...any) error {
	tag, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, "id", id, "error", err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}
