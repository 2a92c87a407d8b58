// Package store persists generated samples in SQLite so a training run can
// replay exactly the sequences it was fed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/slenderham/dyntask"
)

// A Record is one stored sample.
type Record struct {
	ID     string
	RunID  string
	Kind   dyntask.Kind
	Item   int
	Sample dyntask.Sample
}

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	for _, q := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			task BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			item INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS samples_run ON samples (run_id, item)`,
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

// NewRun registers a task configuration and returns the ID of the run.
func (s *SQLiteStore) NewRun(ctx context.Context, task dyntask.Task) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	if _, err := db.ExecContext(ctx, `INSERT INTO runs (id, task) VALUES (?, ?)`, id, payload); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// GetRun returns the task configuration of a run.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (dyntask.Task, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return dyntask.Task{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT task FROM runs WHERE id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dyntask.Task{}, false, nil
		}
		return dyntask.Task{}, false, err
	}
	var task dyntask.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return dyntask.Task{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return task, true, nil
}

// SaveSamples stores samples in one transaction, numbering them from first.
// It returns the IDs assigned to them.
func (s *SQLiteStore) SaveSamples(ctx context.Context, runID string, kind dyntask.Kind, first int, samples []dyntask.Sample) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]string, len(samples))
	for i, sample := range samples {
		payload, err := json.Marshal(sample)
		if err != nil {
			return nil, err
		}
		ids[i] = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO samples (id, run_id, kind, item, payload) VALUES (?, ?, ?, ?, ?)`,
			ids[i], runID, string(kind), first+i, payload)
		if err != nil {
			return nil, fmt.Errorf("insert sample %d: %w", first+i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteStore) GetSample(ctx context.Context, id string) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}
	row := db.QueryRowContext(ctx, `SELECT id, run_id, kind, item, payload FROM samples WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return r, true, nil
}

// ListSamples returns the samples of a run ordered by item.
func (s *SQLiteStore) ListSamples(ctx context.Context, runID string) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, run_id, kind, item, payload FROM samples WHERE run_id = ? ORDER BY item`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var kind string
	var payload []byte
	if err := row.Scan(&r.ID, &r.RunID, &kind, &r.Item, &payload); err != nil {
		return Record{}, err
	}
	r.Kind = dyntask.Kind(kind)
	if err := json.Unmarshal(payload, &r.Sample); err != nil {
		return Record{}, fmt.Errorf("decode sample %s: %w", r.ID, err)
	}
	return r, nil
}
