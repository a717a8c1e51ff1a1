package subscription

import (
	"context"
	"time"
)

// Subscriber is a chat receiving the hourly notices. Its presence is the subscription.
type Subscriber struct {
	ChatID    int64
	CreatedAt time.Time
}

// Repository defines the operations for persisting subscribers.
type Repository interface {
	Get(ctx context.Context, chatID int64) (*Subscriber, error)
	Create(ctx context.Context, s *Subscriber) error
	Delete(ctx context.Context, chatID int64) error
	ListAll(ctx context.Context) ([]*Subscriber, error)
}
