// Package session persists capture sessions: a document snapshot plus the
// paste events recorded against it. Storage is a single SQLite file so a
// session can be inspected, exported, and replayed long after capture.
package session

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/paste"
	"github.com/pastemark/pastemark/core/sqlite"
)

// Session is a capture session: one document and its recorded paste events.
type Session struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides access to persisted sessions.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	fingerprint TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	text        TEXT NOT NULL,
	start_idx   INTEGER NOT NULL,
	end_idx     INTEGER NOT NULL,
	ts          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, ts);
`

// Open opens (creating if necessary) a session store at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open session store", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize session schema", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create starts a new session and returns it. The ID is a random UUID.
func (s *Store) Create(document string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Document:  document,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, document, created_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Document, sess.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	return sess, nil
}

// Get returns the session with the given ID.
func (s *Store) Get(id string) (*Session, error) {
	var sess Session
	var created int64
	err := s.db.QueryRow(
		`SELECT id, document, created_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Document, &created)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("session", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	sess.CreatedAt = time.Unix(created, 0).UTC()
	return &sess, nil
}

// List returns all sessions, newest first.
func (s *Store) List() ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, document, created_at FROM sessions ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var sess Session
		var created int64
		if err := rows.Scan(&sess.ID, &sess.Document, &created); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		sess.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, &sess)
	}
	return out, rows.Err()
}

// SetDocument replaces the stored document snapshot for a session.
func (s *Store) SetDocument(id, document string) error {
	res, err := s.db.Exec(`UPDATE sessions SET document = ? WHERE id = ?`, document, id)
	if err != nil {
		return errors.Wrap(err, "update document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update document")
	}
	if n == 0 {
		return errors.NewNotFound("session", id)
	}
	return nil
}

// RecordEvent stores a paste event against a session. Recording the same
// event twice (same text and timestamp) is a no-op, so captures can be
// replayed safely.
func (s *Store) RecordEvent(sessionID string, ev paste.Event) error {
	if ev.Text == "" {
		return errors.NewValidation("text", "event text must not be empty")
	}
	if _, err := s.Get(sessionID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO events (fingerprint, session_id, text, start_idx, end_idx, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Fingerprint(), sessionID, ev.Text, ev.StartIndex, ev.EndIndex, ev.Timestamp.UnixNano(),
	)
	if err != nil {
		return errors.Wrap(err, "record event")
	}
	return nil
}

// Events returns a session's paste events in capture order.
func (s *Store) Events(sessionID string) ([]paste.Event, error) {
	rows, err := s.db.Query(
		`SELECT text, start_idx, end_idx, ts FROM events WHERE session_id = ? ORDER BY ts, fingerprint`,
		sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	defer rows.Close()

	var out []paste.Event
	for rows.Next() {
		var ev paste.Event
		var ts int64
		if err := rows.Scan(&ev.Text, &ev.StartIndex, &ev.EndIndex, &ts); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		ev.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Delete removes a session and its events.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM events WHERE session_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete events")
	}
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete session")
	}
	if n == 0 {
		return errors.NewNotFound("session", id)
	}
	return nil
}
