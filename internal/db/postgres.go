package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresStore implements Store using PostgreSQL, for deployments
// where several bridge instances share one visit log.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and applies the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS visits (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_visits_user ON visits(user_id, created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RecordVisit appends one visit row.
func (s *PostgresStore) RecordVisit(userID, url, kind string) error {
	query := `INSERT INTO visits (user_id, url, kind, created_at) VALUES ($1, $2, $3, $4)`
	_, err := s.db.Exec(query, userID, url, kind, time.Now())
	return err
}

// RecentVisits returns the newest visits across all users.
func (s *PostgresStore) RecentVisits(limit int) ([]Visit, error) {
	query := `SELECT id, user_id, url, kind, created_at FROM visits ORDER BY created_at DESC, id DESC LIMIT $1`
	return s.queryVisits(query, limit)
}

// VisitsForUser returns the newest visits of one user.
func (s *PostgresStore) VisitsForUser(userID string, limit int) ([]Visit, error) {
	query := `SELECT id, user_id, url, kind, created_at FROM visits WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	return s.queryVisits(query, userID, limit)
}

func (s *PostgresStore) queryVisits(query string, args ...any) ([]Visit, error) {
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
