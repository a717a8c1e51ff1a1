package pending

import (
	"context"
	"sync"
	"time"

	"telegramschoolbot/internal/domain/timetable"
)

type memoryEntry struct {
	category  timetable.Category
	expiresAt time.Time
}

// MemoryStore keeps pending prompts in process memory. Entries are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(ctx context.Context, chatID int64, category timetable.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictExpired(now)
	s.entries[chatID] = memoryEntry{category: category, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, chatID int64) (timetable.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[chatID]
	if !ok {
		return 0, false, nil
	}
	delete(s.entries, chatID)
	if !s.now().Before(e.expiresAt) {
		return 0, false, nil
	}
	return e.category, true, nil
}

// Len reports how many chats are awaiting a reply, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
