package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

// Schema creates the tables used by SQLiteStore. It is safe to apply repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS sequences (
	collection TEXT PRIMARY KEY,
	last_id    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	collection TEXT     NOT NULL,
	id         INTEGER  NOT NULL,
	body       TEXT     NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);
`

// SQLiteStore implements store.RecordStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, applySchema)
}

// NewWithSetup opens the database and runs a setup function before the first ping.
// Tests use it with ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" on one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add inserts rec under the next id of the collection.
func (s *SQLiteStore) Add(ctx context.Context, collection string, rec store.Record) (store.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	seqQuery := `
		INSERT INTO sequences (collection, last_id)
		VALUES (?, 1)
		ON CONFLICT(collection) DO UPDATE SET last_id = last_id + 1
	`
	if _, err := tx.ExecContext(ctx, seqQuery, collection); err != nil {
		return nil, fmt.Errorf("bump sequence: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT last_id FROM sequences WHERE collection = ?`, collection).Scan(&id); err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
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

	insert := `
		INSERT INTO records (collection, id, body)
		VALUES (?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, collection, id, string(body)); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return decodeBody(id, body)
}

// Get retrieves a record by id.
func (s *SQLiteStore) Get(ctx context.Context, collection string, id int64) (store.Record, error) {
	return s.get(ctx, s.db, collection, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q queryer, collection string, id int64) (store.Record, error) {
	query := `
		SELECT body
		FROM records
		WHERE collection = ? AND id = ?
	`
	var body string
	err := q.QueryRowContext(ctx, query, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", collection, id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query record: %w", err)
	}

	return decodeBody(id, []byte(body))
}

// Update merges patch into the stored record inside a transaction.
func (s *SQLiteStore) Update(ctx context.Context, collection string, id int64, patch store.Record) (store.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	current, err := s.get(ctx, tx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := current.Merge(patch)
	body, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	query := `
		UPDATE records
		SET body = ?, updated_at = CURRENT_TIMESTAMP
		WHERE collection = ? AND id = ?
	`
	if _, err := tx.ExecContext(ctx, query, string(body), collection, id); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return decodeBody(id, body)
}

// Delete removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, collection string, id int64) error {
	query := `
		DELETE FROM records
		WHERE collection = ? AND id = ?
	`
	result, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", collection, id, store.ErrNotFound)
	}

	return nil
}

// List returns all records of a collection ordered by id.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]store.Record, error) {
	query := `
		SELECT id, body
		FROM records
		WHERE collection = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]store.Record, 0)
	for rows.Next() {
		var id int64
		var body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeBody(id, []byte(body))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// decodeBody parses a JSON body keeping integers exact and pins the id column value.
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
	rec[store.FieldID] = id
	return rec, nil
}
