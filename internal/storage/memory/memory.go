package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"smartspend/internal/storage"
)

// Store keeps records in a map guarded by a single mutex. Every read
// returns copies; every write publishes a full snapshot.
type Store struct {
	mu    sync.Mutex
	items map[string]storage.Record
	bc    *storage.Broadcaster
}

var _ storage.Store = (*Store)(nil)

func New(seed ...storage.Record) *Store {
	s := &Store{items: make(map[string]storage.Record, len(seed)), bc: storage.NewBroadcaster()}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.items[r.ID] = r.Clone()
	}
	return s
}

func (s *Store) Add(_ context.Context, r storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}
	s.items[r.ID] = r.Clone()
	s.publishLocked()
	return r.Clone(), nil
}

func (s *Store) Update(_ context.Context, r storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; !ok {
		return storage.Record{}, fmt.Errorf("update %s: %w", r.ID, storage.ErrNotFound)
	}
	s.items[r.ID] = r.Clone()
	s.publishLocked()
	return r.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, storage.ErrNotFound)
	}
	delete(s.items, id)
	s.publishLocked()
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]storage.Record)
	s.publishLocked()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return storage.Record{}, fmt.Errorf("get %s: %w", id, storage.ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *Store) All(_ context.Context) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(storage.Record) bool { return true }), nil
}

func (s *Store) ByRange(_ context.Context, startMs, endMs int64) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(inRange(startMs, endMs)), nil
}

func (s *Store) ByCategory(_ context.Context, category string) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(sameCategory(category)), nil
}

func (s *Store) ByRangeAndCategory(_ context.Context, startMs, endMs int64, category string) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rng, cat := inRange(startMs, endMs), sameCategory(category)
	return s.filterLocked(func(r storage.Record) bool { return rng(r) && cat(r) }), nil
}

// Search matches title or notes case-insensitively. A blank query matches nothing.
func (s *Store) Search(_ context.Context, query string) ([]storage.Record, error) {
	if strings.TrimSpace(query) == "" {
		return []storage.Record{}, nil
	}
	q := strings.ToLower(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(r storage.Record) bool {
		if strings.Contains(strings.ToLower(r.Title), q) {
			return true
		}
		return r.Notes != nil && strings.Contains(strings.ToLower(*r.Notes), q)
	}), nil
}

func (s *Store) CountByRange(_ context.Context, startMs, endMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := inRange(startMs, endMs)
	n := 0
	for _, r := range s.items {
		if match(r) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan []storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bc.Subscribe(ctx, s.snapshotLocked()), nil
}

func (s *Store) Close() error {
	s.bc.Close()
	return nil
}

func (s *Store) publishLocked() {
	s.bc.Publish(s.snapshotLocked())
}

func (s *Store) snapshotLocked() []storage.Record {
	return s.filterLocked(func(storage.Record) bool { return true })
}

func (s *Store) filterLocked(keep func(storage.Record) bool) []storage.Record {
	out := make([]storage.Record, 0, len(s.items))
	for _, r := range s.items {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func inRange(startMs, endMs int64) func(storage.Record) bool {
	return func(r storage.Record) bool { return r.Timestamp >= startMs && r.Timestamp <= endMs }
}

func sameCategory(category string) func(storage.Record) bool {
	return func(r storage.Record) bool { return strings.EqualFold(r.Category, category) }
}
