package memory

import (
	"context"
	"testing"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
	"github.com/vovakirdan/wirechat-rooms/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.RecordStore {
		return New()
	})
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Add(ctx, "rooms", store.Record{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
