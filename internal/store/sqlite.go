package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	token TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	profile TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// SQLiteStore persists sessions in a SQLite database so they survive
// restarts.
type SQLiteStore struct {
	db     *sql.DB
	maxAge time.Duration
}

// OpenSQLiteStore opens (or creates) the session database at path and
// ensures the schema exists. maxAge <= 0 disables expiry.
func OpenSQLiteStore(path string, maxAge time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir session db: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}
	return &SQLiteStore{db: db, maxAge: maxAge}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (tourism.Session, error) {
	var (
		sess             tourism.Session
		profile          string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, token, username, profile, created_at, updated_at
		FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Token, &sess.Username, &profile, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return tourism.Session{}, tourism.ErrSessionNotFound
	}
	if err != nil {
		return tourism.Session{}, fmt.Errorf("load session: %w", err)
	}

	sess.CreatedAt = time.Unix(0, created).UTC()
	sess.UpdatedAt = time.Unix(0, updated).UTC()
	if s.maxAge > 0 && sess.UpdatedAt.Before(time.Now().Add(-s.maxAge)) {
		return tourism.Session{}, tourism.ErrSessionNotFound
	}
	if err := json.Unmarshal([]byte(profile), &sess.Profile); err != nil {
		return tourism.Session{}, fmt.Errorf("decode session profile: %w", err)
	}
	if sess.Profile.Interests == nil {
		sess.Profile.Interests = []string{}
	}
	return sess, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sess tourism.Session) error {
	profile, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("encode session profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, username, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			username = excluded.username,
			profile = excluded.profile,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Token, sess.Username, string(profile),
		sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge).UnixNano()
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff); err != nil {
			return fmt.Errorf("expire sessions: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tourism.ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ tourism.SessionStore = (*SQLiteStore)(nil)
