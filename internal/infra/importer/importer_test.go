package importer_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"telegramschoolbot/internal/domain/timetable"
	idb "telegramschoolbot/internal/infra/database"
	"telegramschoolbot/internal/infra/importer"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
pages:
  - category: class
    name: " 1H "
    content: |
      Lunedì: matematica
  - category: teacher
    name: Rossi Mario
    content: "Martedì: 2A"
notices:
  - url: https://scuola.example/avvisi/1
    title: Sciopero
    published_at: 2024-03-04T09:30:00Z
`

func TestDecode(t *testing.T) {
	b, err := importer.Decode(strings.NewReader(seed))
	require.NoError(t, err)
	require.Len(t, b.Pages, 2)
	require.Len(t, b.Notices, 1)
	assert.Equal(t, "Lunedì: matematica\n", b.Pages[0].Content)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), b.Notices[0].PublishedAt.UTC())

	empty, err := importer.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Pages)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown category": "pages:\n  - category: lab\n    name: x\n",
		"empty name":       "pages:\n  - category: class\n    name: '  '\n",
		"unknown field":    "pages:\n  - category: class\n    name: 1H\n    colour: red\n",
		"notice no date":   "notices:\n  - url: https://x\n    title: y\n",
		"not yaml":         "pages: [",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.Decode(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestApplyWritesThroughRepositories(t *testing.T) {
	db, err := idb.NewConnection(t.TempDir() + "/import.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pages := idb.NewPageRepository(db)
	notices := idb.NewNoticeRepository(db)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	im := importer.New(pages, notices, logrus.NewEntry(logger))

	b, err := importer.Decode(strings.NewReader(seed))
	require.NoError(t, err)

	ctx := context.Background()
	res, err := im.Apply(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Pages: 2, Notices: 1}, res)

	page, err := pages.Get(ctx, timetable.CategoryClass, "1h")
	require.NoError(t, err)
	assert.Equal(t, "1H", page.DisplayName)

	// Importing again replaces rows instead of duplicating them.
	_, err = im.Apply(ctx, b)
	require.NoError(t, err)
	found, err := pages.QueryPrefix(ctx, timetable.CategoryTeacher, "rossi", 5)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	recent, err := notices.ListPublishedBetween(ctx,
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Sciopero", recent[0].Title)
}
