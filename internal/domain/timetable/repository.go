package timetable

import (
	"context"
)

// Repository defines the lookups the bot runs against stored timetable pages.
type Repository interface {
	// Get returns the page with exactly this key, or a not-found error.
	Get(ctx context.Context, category Category, key string) (*Page, error)
	// QueryPrefix returns at most limit pages whose key starts with prefix, ordered by key.
	QueryPrefix(ctx context.Context, category Category, prefix string, limit int) ([]*Page, error)
	// Upsert creates or replaces a page. Used by ingestion only.
	Upsert(ctx context.Context, page *Page) error
}
