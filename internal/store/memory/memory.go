package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

type collection struct {
	nextID  int64
	records map[int64]store.Record
}

// MemoryStore implements store.RecordStore in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*collection)}
}

func (s *MemoryStore) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{records: make(map[int64]store.Record)}
		s.collections[name] = c
	}
	return c
}

// Add stores a copy of rec under the next id.
func (s *MemoryStore) Add(ctx context.Context, collection string, rec store.Record) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	c.nextID++
	stored := rec.Clone()
	if stored == nil {
		stored = store.Record{}
	}
	stored[store.FieldID] = c.nextID
	c.records[c.nextID] = stored

	return stored.Clone(), nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(ctx context.Context, collection string, id int64) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, store.ErrNotFound
	}
	rec, ok := c.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

// Update merges patch into the stored record.
func (s *MemoryStore) Update(ctx context.Context, collection string, id int64, patch store.Record) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, store.ErrNotFound
	}
	rec, ok := c.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	merged := rec.Merge(patch)
	c.records[id] = merged

	return merged.Clone(), nil
}

// Delete removes the record.
func (s *MemoryStore) Delete(ctx context.Context, collection string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := c.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.records, id)
	return nil
}

// List returns copies of all records ordered by id.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []store.Record{}, nil
	}
	ids := make([]int64, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.records[id].Clone())
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
