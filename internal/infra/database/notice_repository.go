package database

import (
	"context"
	"fmt"
	"time"

	"telegramschoolbot/internal/domain/notice"

	"github.com/jmoiron/sqlx"
)

type noticeRow struct {
	URL         string `db:"url"`
	Title       string `db:"title"`
	PublishedAt int64  `db:"published_at"`
}

type NoticeRepository struct {
	db *sqlx.DB
}

func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

func (r *NoticeRepository) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*notice.Notice, error) {
	query := r.db.Rebind(`SELECT url, title, published_at FROM notices
               WHERE published_at > ? AND published_at <= ?
               ORDER BY published_at, url`)
	var rows []noticeRow
	if err := r.db.SelectContext(ctx, &rows, query, from.Unix(), to.Unix()); err != nil {
		return nil, fmt.Errorf("error listing notices published between %s and %s: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	notices := make([]*notice.Notice, 0, len(rows))
	for _, row := range rows {
		notices = append(notices, &notice.Notice{
			URL:         row.URL,
			Title:       row.Title,
			PublishedAt: time.Unix(row.PublishedAt, 0).UTC(),
		})
	}
	return notices, nil
}

func (r *NoticeRepository) Upsert(ctx context.Context, n *notice.Notice) error {
	query := r.db.Rebind(`INSERT INTO notices (url, title, published_at) VALUES (?, ?, ?)
               ON CONFLICT (url) DO UPDATE SET title = excluded.title, published_at = excluded.published_at`)
	if _, err := r.db.ExecContext(ctx, query, n.URL, n.Title, n.PublishedAt.Unix()); err != nil {
		return fmt.Errorf("error upserting notice %q: %w", n.URL, err)
	}
	return nil
}
