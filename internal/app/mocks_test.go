package app_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"telegramschoolbot/internal/domain/notice"
	"telegramschoolbot/internal/domain/subscription"
	domainTelegram "telegramschoolbot/internal/domain/telegram"
	"telegramschoolbot/internal/domain/timetable"
	idb "telegramschoolbot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// --- Page repository ---

type pageCall struct {
	Method   string
	Category timetable.Category
	Key      string
	Limit    int
}

type fakePageRepo struct {
	mu    sync.Mutex
	pages []*timetable.Page
	err   error
	calls []pageCall
}

func newFakePageRepo(pages ...*timetable.Page) *fakePageRepo {
	return &fakePageRepo{pages: pages}
}

func (r *fakePageRepo) Get(ctx context.Context, c timetable.Category, key string) (*timetable.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, pageCall{Method: "Get", Category: c, Key: key})
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.pages {
		if p.Category == c && p.Key == key {
			return p, nil
		}
	}
	return nil, idb.ErrPageNotFound
}

func (r *fakePageRepo) QueryPrefix(ctx context.Context, c timetable.Category, prefix string, limit int) ([]*timetable.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, pageCall{Method: "QueryPrefix", Category: c, Key: prefix, Limit: limit})
	if r.err != nil {
		return nil, r.err
	}
	var out []*timetable.Page
	for _, p := range r.pages {
		if p.Category == c && strings.HasPrefix(p.Key, prefix) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePageRepo) Upsert(ctx context.Context, p *timetable.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
	return nil
}

func (r *fakePageRepo) Calls() []pageCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pageCall(nil), r.calls...)
}

// --- Subscriber repository ---

type fakeSubscriberRepo struct {
	mu          sync.Mutex
	subscribers map[int64]*subscription.Subscriber
	GetErr      error
	DeleteCalls int
}

func newFakeSubscriberRepo(chatIDs ...int64) *fakeSubscriberRepo {
	r := &fakeSubscriberRepo{subscribers: make(map[int64]*subscription.Subscriber)}
	for _, id := range chatIDs {
		r.subscribers[id] = &subscription.Subscriber{ChatID: id}
	}
	return r
}

func (r *fakeSubscriberRepo) Get(ctx context.Context, chatID int64) (*subscription.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	s, ok := r.subscribers[chatID]
	if !ok {
		return nil, idb.ErrSubscriberNotFound
	}
	return s, nil
}

func (r *fakeSubscriberRepo) Create(ctx context.Context, s *subscription.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[s.ChatID] = s
	return nil
}

func (r *fakeSubscriberRepo) Delete(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	delete(r.subscribers, chatID)
	return nil
}

func (r *fakeSubscriberRepo) ListAll(ctx context.Context) ([]*subscription.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription.Subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (r *fakeSubscriberRepo) Has(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subscribers[chatID]
	return ok
}

// --- Notice repository ---

type mockNoticeRepo struct {
	ListPublishedBetweenFunc func(ctx context.Context, from, to time.Time) ([]*notice.Notice, error)
}

func (m *mockNoticeRepo) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*notice.Notice, error) {
	return m.ListPublishedBetweenFunc(ctx, from, to)
}

func (m *mockNoticeRepo) Upsert(ctx context.Context, n *notice.Notice) error { return nil }

// --- Telegram client ---

type sentMessage struct {
	ChatID int64
	Text   string
	Mode   domainTelegram.ParseMode
}

type mockTelegramClient struct {
	mu     sync.Mutex
	Sent   []sentMessage
	ErrFor map[int64]error
}

func (m *mockTelegramClient) SendMessage(chatID int64, text string, mode domainTelegram.ParseMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ErrFor[chatID]; ok {
		return err
	}
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, Mode: mode})
	return nil
}
