// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists named snapshots of a paper and its citation
// library in SQLite.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

// ErrNotFound is returned when a session id matches nothing.
var ErrNotFound = errors.New("session not found")

// timeFormat keeps stored timestamps fixed-width so they sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// now is the clock used for timestamps. Tests override it.
var now = time.Now

// Session is a saved paper.
type Session struct {
	ID        string
	Name      string
	Paper     types.Paper
	Library   []types.LibraryCitation
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is one row of List.
type Summary struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Title     string    `json:"title" yaml:"title"`
	Sections  int       `json:"sections" yaml:"sections"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store manages the session database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the session database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.SessionConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			library TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			block_id TEXT NOT NULL,
			title TEXT,
			kind TEXT,
			body TEXT,
			data TEXT NOT NULL,
			PRIMARY KEY (session_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save writes sess, replacing any earlier version with the same id. An
// empty id is assigned "session-<uuid>" and an empty name "Session
// <timestamp>"; both are written back into sess.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	t := now().UTC()
	if sess.ID == "" {
		sess.ID = "session-" + uuid.NewString()
	}
	if strings.TrimSpace(sess.Name) == "" {
		sess.Name = "Session " + t.Format("2006-01-02 15:04:05")
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = t
	}
	sess.UpdatedAt = t

	library, err := json.Marshal(sess.Library)
	if err != nil {
		return fmt.Errorf("marshaling library: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, title, authors, library, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			authors = excluded.authors,
			library = excluded.library,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Name, sess.Paper.Title, sess.Paper.Authors, string(library),
		sess.CreatedAt.Format(timeFormat), sess.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", sess.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clearing blocks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO blocks (session_id, position, block_id, title, kind, body, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing block insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range sess.Paper.Blocks {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshaling block %s: %w", b.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, sess.ID, i, b.ID, b.Title, string(b.Kind), b.Body, string(data)); err != nil {
			return fmt.Errorf("inserting block %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads one session.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	var (
		sess             Session
		title, authors   sql.NullString
		library          sql.NullString
		created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, title, authors, library, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Name, &title, &authors, &library, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}

	sess.Paper.Title = title.String
	sess.Paper.Authors = authors.String
	sess.CreatedAt, _ = time.Parse(timeFormat, created)
	sess.UpdatedAt, _ = time.Parse(timeFormat, updated)
	if library.Valid && library.String != "" {
		if err := json.Unmarshal([]byte(library.String), &sess.Library); err != nil {
			return nil, fmt.Errorf("decoding library: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM blocks WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		var b types.TextBlock
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("decoding block: %w", err)
		}
		sess.Paper.Blocks = append(sess.Paper.Blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// List returns every session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	return s.query(ctx, `SELECT s.id, s.name, COALESCE(s.title, ''), s.updated_at,
			(SELECT count(*) FROM blocks b WHERE b.session_id = s.id)
		FROM sessions s ORDER BY s.updated_at DESC, s.id`)
}

// Search returns sessions whose name, title or any section body contains
// query, case insensitively.
func (s *Store) Search(ctx context.Context, query string) ([]Summary, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return s.query(ctx, `SELECT s.id, s.name, COALESCE(s.title, ''), s.updated_at,
			(SELECT count(*) FROM blocks b WHERE b.session_id = s.id)
		FROM sessions s
		WHERE lower(s.name) LIKE ? ESCAPE '\' OR lower(COALESCE(s.title, '')) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM blocks b WHERE b.session_id = s.id AND lower(COALESCE(b.body, '')) LIKE ? ESCAPE '\')
		ORDER BY s.updated_at DESC, s.id`, pattern, pattern, pattern)
}

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Title, &updated, &sum.Sections); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(timeFormat, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a session and its blocks.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
