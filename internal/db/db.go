// Package db records which gopher resources users opened, for
// operational inspection via the CLI. Session state itself is never
// persisted; losing it on restart is accepted behavior.
package db

import "time"

// Store is the visit-log backend.
type Store interface {
	Close() error
	RecordVisit(userID, url, kind string) error
	RecentVisits(limit int) ([]Visit, error)
	VisitsForUser(userID string, limit int) ([]Visit, error)
}

// Visit is one successful fetch.
type Visit struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"` // "menu" or "file"
	CreatedAt time.Time `json:"created_at"`
}
