// Package history persists the REPL's input history and per-form
// timing/evaluation-count statistics to a small SQLite database. Recall
// reads the most recent forms back; the REPL records entries but does
// not call Recall. It uses
// modernc.org/sqlite, a pure-Go, CGo-free driver, so the interpreter
// stays a single static binary.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the history database connection.
type Store struct {
	db *sql.DB
}

// Open creates (if necessary) and opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	form TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	eval_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);`

// Entry is one recorded REPL evaluation.
type Entry struct {
	SessionID string
	Form      string
	Duration  time.Duration
	EvalCount int
}

// Record appends an entry to the store.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (session_id, form, duration_ns, eval_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Form, e.Duration.Nanoseconds(), e.EvalCount, time.Now().Unix(),
	)
	return err
}

// Recall returns the last n recorded forms, most recent last, for
// seeding line-editing recall.
func (s *Store) Recall(n int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT form FROM entries ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []string
	for rows.Next() {
		var form string
		if err := rows.Scan(&form); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	for i, j := 0, len(forms)-1; i < j; i, j = i+1, j-1 {
		forms[i], forms[j] = forms[j], forms[i]
	}
	return forms, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
