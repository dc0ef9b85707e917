package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS user (
	tg_id INTEGER PRIMARY KEY,
	used_times_number INTEGER DEFAULT 0
)`

// SQLite is the CounterStore backed by an embedded sqlite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			slog.Warn("Error closing database", "err", cerr)
		}
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	slog.Debug("Connected to the database", "path", path)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Increment(userID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO user (tg_id, used_times_number) VALUES (?, 1)
		 ON CONFLICT(tg_id) DO UPDATE SET used_times_number = used_times_number + 1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment usage for %d: %w", userID, err)
	}
	return nil
}

func (s *SQLite) Count(userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		"SELECT used_times_number FROM user WHERE tg_id = ?", userID,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage for %d: %w", userID, err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
