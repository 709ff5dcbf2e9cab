// Package session holds per-user navigation state and the keyed store
// that serializes access to it.
package session

import (
	"time"

	"meshgopher/internal/gopher"
)

// Snapshot is one navigation position: what was open and which page of
// it was showing. The zero Snapshot is the Empty state (nothing open).
type Snapshot struct {
	URL       string
	Listing   *gopher.Listing
	PageIndex int
}

// Empty reports whether the snapshot is the nothing-open state.
func (s Snapshot) Empty() bool {
	return s.URL == "" && s.Listing == nil
}

// Session is the navigation state of one remote user. It is mutated
// only while the store holds that user's entry lock.
type Session struct {
	UserID  string
	Current Snapshot

	// History of prior positions; "b" pops. The Empty starting state
	// is pushed like any other so "b" after the first "u" returns to
	// a blank slate.
	History []Snapshot

	// IndexMap maps displayed digits to the selectable items of the
	// page currently showing. Rebuilt on every render.
	IndexMap []gopher.Item

	// PendingSearch is set after a search item was picked and cleared
	// by the next "s" or any navigation command.
	PendingSearch *gopher.Item

	LastActive time.Time
}

// Push records the current position before navigating somewhere new.
func (s *Session) Push() {
	s.History = append(s.History, s.Current)
}

// Pop restores the most recent position. It returns false when there
// is nothing to go back to.
func (s *Session) Pop() bool {
	n := len(s.History)
	if n == 0 {
		return false
	}
	s.Current = s.History[n-1]
	s.History = s.History[:n-1]
	return true
}

// SetCurrent replaces the current position and resets page-scoped
// state.
func (s *Session) SetCurrent(url string, listing *gopher.Listing) {
	s.Current = Snapshot{URL: url, Listing: listing}
	s.IndexMap = nil
}

// ClearPending drops any half-finished search selection.
func (s *Session) ClearPending() {
	s.PendingSearch = nil
}
