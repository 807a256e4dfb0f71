package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atm-ledger/internal/domain/journal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultJournalCollection is used when no collection name is configured
const DefaultJournalCollection = "atm_journal"

// JournalRepository implements journal.Repository on a MongoDB collection
type JournalRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewJournalRepository(logger *slog.Logger, db *mongo.Database, collection string) *JournalRepository {
	if collection == "" {
		collection = DefaultJournalCollection
	}
	return &JournalRepository{
		coll:   db.Collection(collection),
		logger: logger,
	}
}

// EnsureIndexes creates the unique event_id index that makes Create idempotent,
// and the per-account history index.
func (r *JournalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_id"),
		},
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("account_history"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create journal indexes: %w", err)
	}
	return nil
}

// Create archives an event. A second insert of the same event id yields ErrDuplicateEvent.
func (r *JournalRepository) Create(ctx context.Context, event *journal.Event) error {
	doc, err := toDocument(event)
	if err != nil {
		return fmt.Errorf("failed to encode journal event: %w", err)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return journal.ErrDuplicateEvent{EventID: event.EventID}
		}
		r.logger.Error("Failed to archive journal event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to archive journal event: %w", err)
	}
	return nil
}

func (r *JournalRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*journal.Event, error) {
	var doc eventDocument
	err := r.coll.FindOne(ctx, bson.M{"event_id": eventID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, journal.ErrEventNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get journal event", "event_id", eventID.String(), "error", err)
		return nil, fmt.Errorf("failed to get journal event: %w", err)
	}
	return doc.toEvent()
}

// ListByAccount returns the account's events, newest first
func (r *JournalRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*journal.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		r.logger.Error("Failed to list journal events", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list journal events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode journal events: %w", err)
	}

	events := make([]*journal.Event, 0, len(docs))
	for i := range docs {
		ev, err := docs[i].toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *JournalRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		r.logger.Error("Failed to count journal events", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to count journal events: %w", err)
	}
	return count, nil
}

// eventDocument is the stored form of a journal.Event. Money is kept as Decimal128.
type eventDocument struct {
	EventID       string               `bson:"event_id"`
	Kind          string               `bson:"kind"`
	AccountID     string               `bson:"account_id,omitempty"`
	Counterparty  string               `bson:"counterparty,omitempty"`
	RecordID      string               `bson:"record_id,omitempty"`
	Amount        primitive.Decimal128 `bson:"amount"`
	BalanceAfter  primitive.Decimal128 `bson:"balance_after"`
	MachineCash   primitive.Decimal128 `bson:"machine_cash"`
	Paper         int                  `bson:"paper"`
	Ink           int                  `bson:"ink"`
	Warnings      []string             `bson:"warnings,omitempty"`
	CorrelationID string               `bson:"correlation_id,omitempty"`
	OccurredAt    time.Time            `bson:"occurred_at"`
	ArchivedAt    time.Time            `bson:"archived_at"`
}

func toDocument(ev *journal.Event) (*eventDocument, error) {
	amount, err := toDecimal128(ev.Amount)
	if err != nil {
		return nil, err
	}
	balance, err := toDecimal128(ev.BalanceAfter)
	if err != nil {
		return nil, err
	}
	cash, err := toDecimal128(ev.MachineCash)
	if err != nil {
		return nil, err
	}

	doc := &eventDocument{
		EventID:       ev.EventID.String(),
		Kind:          string(ev.Kind),
		AccountID:     ev.AccountID,
		Counterparty:  ev.Counterparty,
		Amount:        amount,
		BalanceAfter:  balance,
		MachineCash:   cash,
		Paper:         ev.Paper,
		Ink:           ev.Ink,
		Warnings:      ev.Warnings,
		CorrelationID: ev.CorrelationID,
		OccurredAt:    ev.OccurredAt.UTC(),
		ArchivedAt:    time.Now().UTC(),
	}
	if ev.RecordID != nil {
		doc.RecordID = ev.RecordID.String()
	}
	return doc, nil
}

func (d *eventDocument) toEvent() (*journal.Event, error) {
	eventID, err := uuid.Parse(d.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", d.EventID, err)
	}

	ev := &journal.Event{
		EventID:       eventID,
		Kind:          journal.Kind(d.Kind),
		AccountID:     d.AccountID,
		Counterparty:  d.Counterparty,
		Amount:        fromDecimal128(d.Amount),
		BalanceAfter:  fromDecimal128(d.BalanceAfter),
		MachineCash:   fromDecimal128(d.MachineCash),
		Paper:         d.Paper,
		Ink:           d.Ink,
		Warnings:      d.Warnings,
		CorrelationID: d.CorrelationID,
		OccurredAt:    d.OccurredAt,
	}
	if d.RecordID != "" {
		recordID, err := uuid.Parse(d.RecordID)
		if err != nil {
			return nil, fmt.Errorf("invalid record id %q: %w", d.RecordID, err)
		}
		ev.RecordID = &recordID
	}
	return ev, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	parsed, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
