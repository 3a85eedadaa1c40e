// Package store persists session and snapshot bookkeeping metadata in
// SQLite so the registry can reconcile/list without a directory walk. The
// workspace bytes themselves are never persisted here and do not survive a
// process restart — only this metadata does, purely to support
// listing/reconciliation within a single process lifetime.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

func isBusyLock(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") || strings.Contains(s, "SQLITE_BUSY")
}

// retryOnBusy runs fn and retries on SQLITE_BUSY with exponential backoff.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 4
	backoff := 25 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isBusyLock(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return lastErr
}

// Session is the bookkeeping row for one session.
type Session struct {
	ID           string
	Status       string
	Cwd          string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// Snapshot is the bookkeeping row for one session snapshot.
type Snapshot struct {
	SessionID   string
	Name        string
	CreatedAt   time.Time
	BackingPath string
}

type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	status        TEXT NOT NULL DEFAULT 'active',
	cwd           TEXT NOT NULL DEFAULT '/',
	created_at    DATETIME NOT NULL,
	expires_at    DATETIME NOT NULL,
	last_activity DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS snapshots (
	session_id   TEXT NOT NULL,
	name         TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	backing_path TEXT NOT NULL,
	PRIMARY KEY (session_id, name)
);
`

// DefaultMaxOpenConns is the default connection pool size for concurrent
// reads. WAL mode allows multiple readers plus one writer.
const DefaultMaxOpenConns = 4

// dsnWithPragmas applies WAL mode and perf pragmas to every connection, per
// modernc.org/sqlite's DSN-query-param convention.
func dsnWithPragmas(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(15000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-64000)" +
		"&_pragma=temp_store(MEMORY)"
}

// New opens (creating if necessary) the bookkeeping database at dbPath.
func New(dbPath string, maxOpenConns int) (*Store, error) {
	dsn := dsnWithPragmas(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateSession(sess *Session) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(
			`INSERT INTO sessions (id, status, cwd, created_at, expires_at, last_activity)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.Status, sess.Cwd, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC(), sess.LastActivity.UTC(),
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, status, cwd, created_at, expires_at, last_activity FROM sessions WHERE id = ?`, id,
	)
	return scanSession(row)
}

func (s *Store) ListSessions() ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, status, cwd, created_at, expires_at, last_activity FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (s *Store) UpdateSessionActivity(id, cwd string, expiresAt time.Time) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE sessions SET cwd = ?, last_activity = ?, expires_at = ? WHERE id = ?`,
			cwd, time.Now().UTC(), expiresAt.UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("updating session activity: %w", err)
	}
	return checkRowAffected(result, id)
}

func (s *Store) UpdateSessionStatus(id, status string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, status, id)
		return e
	})
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}
	return checkRowAffected(result, id)
}

func (s *Store) ListExpiredSessions(idleTTL time.Duration) ([]*Session, error) {
	cutoff := time.Now().Add(-idleTTL).UTC()
	rows, err := s.db.Query(
		`SELECT id, status, cwd, created_at, expires_at, last_activity FROM sessions
		 WHERE status = 'active' AND last_activity <= ?`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("listing expired sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (s *Store) ListActiveSessions() ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, status, cwd, created_at, expires_at, last_activity FROM sessions WHERE status = 'active'`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (s *Store) DeleteSession(id string) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
		return e
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	_, _ = s.db.Exec(`DELETE FROM snapshots WHERE session_id = ?`, id)
	return nil
}

func (s *Store) PutSnapshot(snap *Snapshot) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(
			`INSERT INTO snapshots (session_id, name, created_at, backing_path) VALUES (?, ?, ?, ?)
			 ON CONFLICT(session_id, name) DO UPDATE SET created_at = excluded.created_at, backing_path = excluded.backing_path`,
			snap.SessionID, snap.Name, snap.CreatedAt.UTC(), snap.BackingPath,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}
	return nil
}

func (s *Store) ListSnapshots(sessionID string) ([]*Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT session_id, name, created_at, backing_path FROM snapshots WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.SessionID, &snap.Name, &snap.CreatedAt, &snap.BackingPath); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSnapshot(sessionID, name string) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(`DELETE FROM snapshots WHERE session_id = ? AND name = ?`, sessionID, name)
		return e
	})
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSession(row scannable) (*Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.Status, &sess.Cwd, &sess.CreatedAt, &sess.ExpiresAt, &sess.LastActivity)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &sess, nil
}

func scanSessions(rows *sql.Rows) ([]*Session, error) {
	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Status, &sess.Cwd, &sess.CreatedAt, &sess.ExpiresAt, &sess.LastActivity); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func checkRowAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
