package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a record does not exist in a collection.
var ErrNotFound = errors.New("record not found")

// FieldID is the record key owned by the store.
const FieldID = "id"

// Record is a schemaless document kept in a collection.
type Record map[string]any

// ID returns the store-assigned identifier, or 0 if the record has none.
func (r Record) ID() int64 {
	switch v := r[FieldID].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Clone returns a copy that shares no maps or slices with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge copies patch keys onto a clone of r. The id key is never overwritten.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range patch {
		if k == FieldID {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []int64:
		return append([]int64(nil), t...)
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// RecordStore is a generic store of records grouped into named collections.
// Identifiers start at 1 in every collection and only grow.
type RecordStore interface {
	// Add stores rec under a freshly assigned id and returns the stored record.
	Add(ctx context.Context, collection string, rec Record) (Record, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, collection string, id int64) (Record, error)

	// Update merges patch into the stored record and returns the result.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, collection string, id int64, patch Record) (Record, error)

	// Delete removes the record or returns ErrNotFound.
	Delete(ctx context.Context, collection string, id int64) error

	// List returns every record in the collection ordered by id.
	List(ctx context.Context, collection string) ([]Record, error)

	// Close releases the underlying storage.
	Close() error
}
