package ruleset

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists rules to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite rule store.
// The path should be a file path (e.g., "./rules.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A ":memory:" database is per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			name TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			syntax TEXT NOT NULL,
			source TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(r Rule) (Rule, error) {
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Rule{}, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Rule{}, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var existingID string
	err = tx.QueryRow(`SELECT id FROM rules WHERE name = ?`, r.Name).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Rule{}, fmt.Errorf("lookup rule: %w", err)
	}

	stored := prepare(r, existingID)
	_, err = tx.Exec(`
		INSERT INTO rules (name, id, syntax, source, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			syntax = excluded.syntax,
			source = excluded.source,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, stored.Name, stored.ID, string(stored.Syntax), stored.Source, stored.Description,
		stored.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Rule{}, fmt.Errorf("save rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Rule{}, fmt.Errorf("commit rule: %w", err)
	}
	return stored, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(name string) (Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Rule{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT name, id, syntax, source, description, updated_at
		FROM rules
		WHERE name = ?
	`, name)

	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, fmt.Errorf("load rule: %w", err)
	}
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT name, id, syntax, source, description, updated_at
		FROM rules
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}

	return rules, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM rules WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (Rule, error) {
	var (
		r         Rule
		syntax    string
		updatedAt string
	)
	if err := row.Scan(&r.Name, &r.ID, &syntax, &r.Source, &r.Description, &updatedAt); err != nil {
		return Rule{}, err
	}
	r.Syntax = Syntax(syntax)
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: parse updated_at: %w", r.Name, err)
	}
	r.UpdatedAt = ts
	return r, nil
}
