package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and applies the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_visits_user ON visits(user_id, created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordVisit appends one visit row.
func (s *SQLiteStore) RecordVisit(userID, url, kind string) error {
	query := `INSERT INTO visits (user_id, url, kind, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, userID, url, kind, time.Now())
	return err
}

// RecentVisits returns the newest visits across all users.
func (s *SQLiteStore) RecentVisits(limit int) ([]Visit, error) {
	query := `SELECT id, user_id, url, kind, created_at FROM visits ORDER BY created_at DESC, id DESC LIMIT ?`
	return s.queryVisits(query, limit)
}

// VisitsForUser returns the newest visits of one user.
func (s *SQLiteStore) VisitsForUser(userID string, limit int) ([]Visit, error) {
	query := `SELECT id, user_id, url, kind, created_at FROM visits WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	return s.queryVisits(query, userID, limit)
}

func (s *SQLiteStore) queryVisits(query string, args ...any) ([]Visit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.UserID, &v.URL, &v.Kind, &v.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
