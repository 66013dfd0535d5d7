package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

const (
	recordPrefix   = "rec/"
	sequencePrefix = "seq/"
	seqBandwidth   = 100
	maxTxnRetries  = 5
)

// BadgerStore implements store.RecordStore on top of a Badger key-value database.
type BadgerStore struct {
	db *badger.DB

	mu        sync.Mutex
	sequences map[string]*badger.Sequence
}

// New opens (or creates) a database in dir.
func New(dir string) (*BadgerStore, error) {
	return open(badger.DefaultOptions(dir).WithLogger(nil))
}

// NewInMemory opens a database that lives only in memory.
func NewInMemory() (*BadgerStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, sequences: make(map[string]*badger.Sequence)}, nil
}

// Close releases leased sequences and closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, seq := range s.sequences {
		if err := seq.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release sequence %s: %w", name, err))
		}
	}
	s.sequences = map[string]*badger.Sequence{}

	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close badger: %w", err))
	}
	return errors.Join(errs...)
}

func recordKey(collection string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", recordPrefix, collection, id))
}

func collectionPrefix(collection string) []byte {
	return []byte(recordPrefix + collection + "/")
}

func (s *BadgerStore) nextID(collection string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.sequences[collection]
	if !ok {
		var err error
		seq, err = s.db.GetSequence([]byte(sequencePrefix+collection), seqBandwidth)
		if err != nil {
			return 0, fmt.Errorf("get sequence: %w", err)
		}
		s.sequences[collection] = seq
	}

	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}
	// Sequences start at 0; record ids start at 1.
	return int64(n) + 1, nil
}

// Add stores rec under the next id of the collection.
func (s *BadgerStore) Add(ctx context.Context, collection string, rec store.Record) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := s.nextID(collection)
	if err != nil {
		return nil, err
	}

	stored := rec.Clone()
	if stored == nil {
		stored = store.Record{}
	}
	stored[store.FieldID] = id

	body, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(collection, id), body)
	})
	if err != nil {
		return nil, fmt.Errorf("set record: %w", err)
	}

	return decodeBody(id, body)
}

// Get retrieves a record by id.
func (s *BadgerStore) Get(ctx context.Context, collection string, id int64) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		body, err = readValue(txn, recordKey(collection, id))
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s %d: %w", collection, id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	return decodeBody(id, body)
}

// Update merges patch into the stored record. Conflicting transactions are retried.
func (s *BadgerStore) Update(ctx context.Context, collection string, id int64, patch store.Record) (store.Record, error) {
	key := recordKey(collection, id)

	var body []byte
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			current, err := readValue(txn, key)
			if err != nil {
				return err
			}
			rec, err := decodeBody(id, current)
			if err != nil {
				return err
			}
			body, err = json.Marshal(rec.Merge(patch))
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			return txn.Set(key, body)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s %d: %w", collection, id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("update record: %w", err)
	}

	return decodeBody(id, body)
}

// Delete removes a record.
func (s *BadgerStore) Delete(ctx context.Context, collection string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := recordKey(collection, id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s %d: %w", collection, id, store.ErrNotFound)
		}
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// List returns all records of a collection ordered by id.
// Keys carry zero-padded ids, so iteration order is id order.
func (s *BadgerStore) List(ctx context.Context, collection string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := collectionPrefix(collection)
	records := make([]store.Record, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			body, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decodeBody(0, body)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return records, nil
}

func readValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// decodeBody parses a JSON body keeping integers exact. A non-zero id overrides the stored one.
func decodeBody(id int64, body []byte) (store.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rec store.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		rec = store.Record{}
	}
	if id != 0 {
		rec[store.FieldID] = id
	}
	return rec, nil
}
