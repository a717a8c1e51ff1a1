package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegramschoolbot/internal/domain/timetable"

	"github.com/jmoiron/sqlx"
)

var ErrPageNotFound = errors.New("timetable page not found")

type pageRow struct {
	Category    string `db:"category"`
	Key         string `db:"name_key"`
	DisplayName string `db:"display_name"`
	Content     string `db:"content"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r pageRow) toPage() (*timetable.Page, error) {
	c, err := timetable.ParseCategory(r.Category)
	if err != nil {
		return nil, err
	}
	return &timetable.Page{
		Category:    c,
		Key:         r.Key,
		DisplayName: r.DisplayName,
		Content:     r.Content,
		UpdatedAt:   time.Unix(r.UpdatedAt, 0).UTC(),
	}, nil
}

type PageRepository struct {
	db *sqlx.DB
}

func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

func (r *PageRepository) Get(ctx context.Context, category timetable.Category, key string) (*timetable.Page, error) {
	query := r.db.Rebind(`SELECT category, name_key, display_name, content, updated_at
               FROM pages WHERE category = ? AND name_key = ?`)
	var row pageRow
	if err := r.db.GetContext(ctx, &row, query, category.String(), key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("error getting %s page %q: %w", category, key, err)
	}
	return row.toPage()
}

func (r *PageRepository) QueryPrefix(ctx context.Context, category timetable.Category, prefix string, limit int) ([]*timetable.Page, error) {
	query := r.db.Rebind(`SELECT category, name_key, display_name, content, updated_at
               FROM pages WHERE category = ? AND name_key LIKE ? ESCAPE '\'
               ORDER BY name_key LIMIT ?`)
	var rows []pageRow
	if err := r.db.SelectContext(ctx, &rows, query, category.String(), likePrefix(prefix), limit); err != nil {
		return nil, fmt.Errorf("error querying %s pages by prefix %q: %w", category, prefix, err)
	}

	pages := make([]*timetable.Page, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPage()
		if err != nil {
			return nil, fmt.Errorf("error decoding %s page %q: %w", category, row.Key, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (r *PageRepository) Upsert(ctx context.Context, p *timetable.Page) error {
	if !p.Category.Valid() {
		return fmt.Errorf("error upserting page %q: invalid category", p.DisplayName)
	}
	p.Key = timetable.NormalizeKey(p.DisplayName)
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := r.db.Rebind(`INSERT INTO pages (category, name_key, display_name, content, updated_at)
               VALUES (?, ?, ?, ?, ?)
               ON CONFLICT (category, name_key) DO UPDATE
               SET display_name = excluded.display_name, content = excluded.content, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, p.Category.String(), p.Key, p.DisplayName, p.Content, p.UpdatedAt.Unix()); err != nil {
		return fmt.Errorf("error upserting %s page %q: %w", p.Category, p.Key, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix builds a LIKE pattern matching keys that start with prefix literally.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
