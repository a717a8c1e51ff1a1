// internal/domain/notice/notice.go
package notice

import (
	"context"
	"time"
)

// Notice is an announcement published on the school website.
type Notice struct {
	URL         string // unique
	Title       string
	PublishedAt time.Time
}

// Repository defines operations over published notices.
type Repository interface {
	// ListPublishedBetween returns notices with from < PublishedAt <= to, oldest first.
	ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*Notice, error)
	Upsert(ctx context.Context, n *Notice) error
}
