// Package history keeps a local SQLite record of generation runs for
// the CLI, so past workouts can be listed without reaching the server.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded generation run.
type Entry struct {
	WorkoutID string
	BodyParts []string
	Goal      string
	Exercises int
	CreatedAt time.Time
}

// DB is the local generation history database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite history database at dir/history.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		workout_id TEXT PRIMARY KEY,
		body_parts TEXT NOT NULL,
		goal       TEXT NOT NULL DEFAULT '',
		exercises  INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &DB{db: db}, nil
}

// Record stores one generation run. Re-recording the same workout ID
// overwrites the previous row.
func (h *DB) Record(e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO generations (workout_id, body_parts, goal, exercises, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.WorkoutID, strings.Join(e.BodyParts, ","), e.Goal, e.Exercises, createdAt.UTC(),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (h *DB) Recent(limit int) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT workout_id, body_parts, goal, exercises, created_at FROM generations ORDER BY created_at DESC, workout_id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var parts string
		if err := rows.Scan(&e.WorkoutID, &parts, &e.Goal, &e.Exercises, &e.CreatedAt); err != nil {
			return nil, err
		}
		if parts != "" {
			e.BodyParts = strings.Split(parts, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the history database.
func (h *DB) Close() error {
	return h.db.Close()
}
