// Package importer loads timetable pages and notices from a YAML seed file.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"telegramschoolbot/internal/domain/notice"
	"telegramschoolbot/internal/domain/timetable"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Bundle is the content of a seed file.
type Bundle struct {
	Pages   []PageEntry   `yaml:"pages"`
	Notices []NoticeEntry `yaml:"notices"`
}

type PageEntry struct {
	Category string `yaml:"category"` // class | teacher | classroom
	Name     string `yaml:"name"`
	Content  string `yaml:"content"`
}

type NoticeEntry struct {
	URL         string    `yaml:"url"`
	Title       string    `yaml:"title"`
	PublishedAt time.Time `yaml:"published_at"`
}

// Result counts what Apply wrote.
type Result struct {
	Pages   int
	Notices int
}

// Decode parses and validates a seed file. Unknown fields are rejected.
func Decode(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return &b, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Bundle) validate() error {
	for i, p := range b.Pages {
		if _, err := timetable.ParseCategory(p.Category); err != nil {
			return fmt.Errorf("page #%d: %w", i+1, err)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("page #%d: name is empty", i+1)
		}
	}
	for i, n := range b.Notices {
		if n.URL == "" {
			return fmt.Errorf("notice #%d: url is empty", i+1)
		}
		if n.PublishedAt.IsZero() {
			return fmt.Errorf("notice #%d: published_at is missing", i+1)
		}
	}
	return nil
}

type Importer struct {
	pages   timetable.Repository
	notices notice.Repository
	logger  *logrus.Entry
}

func New(pages timetable.Repository, notices notice.Repository, logger *logrus.Entry) *Importer {
	return &Importer{pages: pages, notices: notices, logger: logger}
}

// Apply upserts every page and notice of b. It stops at the first storage error.
func (im *Importer) Apply(ctx context.Context, b *Bundle) (Result, error) {
	var res Result
	for _, entry := range b.Pages {
		category, err := timetable.ParseCategory(entry.Category)
		if err != nil {
			return res, err
		}
		page := timetable.NewPage(category, strings.TrimSpace(entry.Name), entry.Content)
		if err := im.pages.Upsert(ctx, page); err != nil {
			return res, fmt.Errorf("failed to import page %s %q: %w", category, entry.Name, err)
		}
		im.logger.WithFields(logrus.Fields{"category": category, "key": page.Key}).Debug("Page imported")
		res.Pages++
	}
	for _, entry := range b.Notices {
		n := &notice.Notice{URL: entry.URL, Title: entry.Title, PublishedAt: entry.PublishedAt}
		if err := im.notices.Upsert(ctx, n); err != nil {
			return res, fmt.Errorf("failed to import notice %q: %w", entry.URL, err)
		}
		res.Notices++
	}
	return res, nil
}
