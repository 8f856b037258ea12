package logs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store reads and records log entries, newest first.
type Store interface {
	Count(ctx context.Context, t Type) (int, error)
	List(ctx context.Context, t Type, offset, limit int) ([]Entry, error)
	All(ctx context.Context, t Type) ([]Entry, error)
	Insert(ctx context.Context, e Entry) error
}

// MemoryStore keeps entries in process.
type MemoryStore struct {
	entries map[Type][]Entry
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Type][]Entry)}
}

func (s *MemoryStore) Count(_ context.Context, t Type) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[t]), nil
}

func (s *MemoryStore) List(_ context.Context, t Type, offset, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[t]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return []Entry{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]Entry(nil), all[offset:end]...), nil
}

func (s *MemoryStore) All(_ context.Context, t Type) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries[t]...), nil
}

// Insert stores e, keeping the newest-first order. Missing ids and
// timestamps are filled in.
func (s *MemoryStore) Insert(_ context.Context, e Entry) error {
	if _, err := ParseType(string(e.Type)); err != nil || e.Type == "" {
		return ErrUnknownType
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.entries[e.Type], e)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	s.entries[e.Type] = list
	return nil
}
