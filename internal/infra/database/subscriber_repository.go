package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"telegramschoolbot/internal/domain/subscription"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

type subscriberRow struct {
	ChatID    int64 `db:"chat_id"`
	CreatedAt int64 `db:"created_at"`
}

func (r subscriberRow) toSubscriber() *subscription.Subscriber {
	return &subscription.Subscriber{ChatID: r.ChatID, CreatedAt: time.Unix(r.CreatedAt, 0).UTC()}
}

type SubscriberRepository struct {
	db *sqlx.DB
}

func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) Get(ctx context.Context, chatID int64) (*subscription.Subscriber, error) {
	var row subscriberRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT chat_id, created_at FROM subscribers WHERE chat_id = ?`), chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber %d: %w", chatID, err)
	}
	return row.toSubscriber(), nil
}

// Create stores the subscriber. Creating an existing subscriber is a no-op.
func (r *SubscriberRepository) Create(ctx context.Context, s *subscription.Subscriber) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	query := r.db.Rebind(`INSERT INTO subscribers (chat_id, created_at) VALUES (?, ?)
               ON CONFLICT (chat_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, s.ChatID, s.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("error creating subscriber %d: %w", s.ChatID, err)
	}
	return nil
}

// Delete removes the subscriber. Deleting a missing subscriber is not an error.
func (r *SubscriberRepository) Delete(ctx context.Context, chatID int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM subscribers WHERE chat_id = ?`), chatID); err != nil {
		return fmt.Errorf("error deleting subscriber %d: %w", chatID, err)
	}
	return nil
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]*subscription.Subscriber, error) {
	var rows []subscriberRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT chat_id, created_at FROM subscribers ORDER BY chat_id`); err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	subscribers := make([]*subscription.Subscriber, 0, len(rows))
	for _, row := range rows {
		subscribers = append(subscribers, row.toSubscriber())
	}
	return subscribers, nil
}
