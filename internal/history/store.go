// Package history persists accepted subtitle lines to SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/subreader/subreader/internal/apperr"
)

// Entry is one accepted subtitle line.
type Entry struct {
	ID         int64
	SessionID  string
	SpokenAt   time.Time
	Text       string
	Confidence float64
}

// Store manages the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStoreFailed, "open history db")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, apperr.Wrapf(execErr, apperr.CodeStoreFailed, "apply pragma %q", pragma)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS utterances (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id  TEXT NOT NULL,
        spoken_at   TEXT NOT NULL,
        text        TEXT NOT NULL,
        confidence  REAL NOT NULL DEFAULT 0
    );
    CREATE INDEX IF NOT EXISTS idx_utterances_session ON utterances(session_id);
    CREATE INDEX IF NOT EXISTS idx_utterances_spoken_at ON utterances(spoken_at);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperr.Wrap(err, apperr.CodeStoreFailed, "apply history schema")
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Append records an accepted subtitle line.
func (s *Store) Append(ctx context.Context, e Entry) (int64, error) {
	at := e.SpokenAt
	if at.IsZero() {
		at = time.Now()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO utterances (session_id, spoken_at, text, confidence) VALUES (?, ?, ?, ?)`,
		e.SessionID,
		at.UTC().Format(time.RFC3339Nano),
		e.Text,
		e.Confidence,
	)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeStoreFailed, "insert utterance")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeStoreFailed, "last insert id")
	}
	return id, nil
}

// Recent returns the newest entries, most recent first. A non-positive
// limit returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, session_id, spoken_at, text, confidence FROM utterances ORDER BY id DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStoreFailed, "query recent utterances")
	}
	defer rows.Close()
	return scanEntries(rows)
}

// BySession returns every entry for one session in spoken order.
func (s *Store) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, spoken_at, text, confidence FROM utterances WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStoreFailed, "query session utterances")
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the total number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM utterances`).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeStoreFailed, "count utterances")
	}
	return n, nil
}

// Clear removes all stored entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM utterances`)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeStoreFailed, "clear utterances")
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			atRaw string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &atRaw, &e.Text, &e.Confidence); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeStoreFailed, "scan utterance")
		}
		if at, err := parseTimeString(atRaw); err == nil {
			e.SpokenAt = at
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
