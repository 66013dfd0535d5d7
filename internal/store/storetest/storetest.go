// Package storetest holds behaviour checks shared by every store.RecordStore adapter.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

// Run exercises an adapter. newStore must return an empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.RecordStore) {
	t.Helper()

	t.Run("AddAssignsSequentialIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Add(ctx, "rooms", store.Record{"name": "a"})
		if err != nil {
			t.Fatalf("add first: %v", err)
		}
		second, err := s.Add(ctx, "rooms", store.Record{"name": "b"})
		if err != nil {
			t.Fatalf("add second: %v", err)
		}
		other, err := s.Add(ctx, "chats", store.Record{"content": "hi"})
		if err != nil {
			t.Fatalf("add other collection: %v", err)
		}

		if first.ID() != 1 || second.ID() != 2 {
			t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID(), second.ID())
		}
		if other.ID() != 1 {
			t.Fatalf("expected ids to be per collection, got %d", other.ID())
		}
		if first["name"] != "a" {
			t.Fatalf("expected stored name 'a', got %v", first["name"])
		}
	})

	t.Run("GetMissingReturnsNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Get(ctx, "rooms", 1); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for empty collection, got %v", err)
		}
		if _, err := s.Add(ctx, "rooms", store.Record{"name": "a"}); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := s.Get(ctx, "rooms", 99); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
		}
	})

	t.Run("UpdateMergesPatch", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		added, err := s.Add(ctx, "rooms", store.Record{"name": "a", "members": []int64{1}})
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		updated, err := s.Update(ctx, "rooms", added.ID(), store.Record{"members": []int64{1, 2}, "id": int64(50)})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID() != added.ID() {
			t.Fatalf("expected id %d to be kept, got %d", added.ID(), updated.ID())
		}
		if updated["name"] != "a" {
			t.Fatalf("expected untouched name, got %v", updated["name"])
		}

		got, err := s.Get(ctx, "rooms", added.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		members, err := Int64s(got["members"])
		if err != nil {
			t.Fatalf("members: %v", err)
		}
		if len(members) != 2 || members[0] != 1 || members[1] != 2 {
			t.Fatalf("expected members [1 2], got %v", members)
		}

		if _, err := s.Update(ctx, "rooms", 42, store.Record{"name": "x"}); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on missing update, got %v", err)
		}
	})

	t.Run("DeleteRemovesRecord", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		added, err := s.Add(ctx, "rooms", store.Record{"name": "a"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := s.Delete(ctx, "rooms", added.ID()); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Get(ctx, "rooms", added.ID()); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.Delete(ctx, "rooms", added.ID()); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}

		next, err := s.Add(ctx, "rooms", store.Record{"name": "b"})
		if err != nil {
			t.Fatalf("add after delete: %v", err)
		}
		if next.ID() <= added.ID() {
			t.Fatalf("expected ids not to be reused, got %d after %d", next.ID(), added.ID())
		}
	})

	t.Run("ListOrdersByID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		empty, err := s.List(ctx, "rooms")
		if err != nil {
			t.Fatalf("list empty: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected empty list, got %d records", len(empty))
		}

		for _, name := range []string{"a", "b", "c"} {
			if _, err := s.Add(ctx, "rooms", store.Record{"name": name}); err != nil {
				t.Fatalf("add %s: %v", name, err)
			}
		}
		if err := s.Delete(ctx, "rooms", 2); err != nil {
			t.Fatalf("delete: %v", err)
		}

		recs, err := s.List(ctx, "rooms")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("expected 2 records, got %d", len(recs))
		}
		if recs[0].ID() != 1 || recs[1].ID() != 3 {
			t.Fatalf("expected ids [1 3], got [%d %d]", recs[0].ID(), recs[1].ID())
		}
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		added, err := s.Add(ctx, "rooms", store.Record{"name": "a"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		added["name"] = "mutated"

		got, err := s.Get(ctx, "rooms", added.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got["name"] != "a" {
			t.Fatalf("expected stored name to be unaffected, got %v", got["name"])
		}
	})

	t.Run("ConcurrentAdds", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Add(ctx, "chats", store.Record{"content": fmt.Sprintf("m%d", i)}); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent add: %v", err)
		}

		recs, err := s.List(ctx, "chats")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != n {
			t.Fatalf("expected %d records, got %d", n, len(recs))
		}
		seen := make(map[int64]bool, n)
		for _, r := range recs {
			if seen[r.ID()] {
				t.Fatalf("duplicate id %d", r.ID())
			}
			seen[r.ID()] = true
		}
	})
}

// Int64s converts a stored numeric slice to []int64 regardless of how the adapter decoded it.
func Int64s(v any) ([]int64, error) {
	switch t := v.(type) {
	case []int64:
		return t, nil
	case []any:
		out := make([]int64, 0, len(t))
		for _, item := range t {
			n := store.Record{store.FieldID: item}.ID()
			if n == 0 {
				return nil, fmt.Errorf("unexpected element %v (%T)", item, item)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
