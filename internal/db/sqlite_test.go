package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRecordAndQuery(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordVisit("!user1", "gopher://example.org:70/1/", "menu"))
	require.NoError(t, store.RecordVisit("!user1", "gopher://example.org:70/0/a.txt", "file"))
	require.NoError(t, store.RecordVisit("!user2", "gopher://other.example:70/1/", "menu"))

	visits, err := store.RecentVisits(10)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	// Newest first.
	assert.Equal(t, "!user2", visits[0].UserID)
	assert.Equal(t, "gopher://other.example:70/1/", visits[0].URL)
	assert.False(t, visits[0].CreatedAt.IsZero())
}

func TestSQLiteVisitsForUser(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordVisit("!user1", "gopher://a:70/1/", "menu"))
	require.NoError(t, store.RecordVisit("!user2", "gopher://b:70/1/", "menu"))
	require.NoError(t, store.RecordVisit("!user1", "gopher://c:70/0/x", "file"))

	visits, err := store.VisitsForUser("!user1", 10)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, "gopher://c:70/0/x", visits[0].URL)
	assert.Equal(t, "file", visits[0].Kind)
}

func TestSQLiteLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordVisit("!u", "gopher://h:70/1/", "menu"))
	}
	visits, err := store.RecentVisits(2)
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestSQLiteEmptyLog(t *testing.T) {
	store := newTestStore(t)
	visits, err := store.RecentVisits(10)
	require.NoError(t, err)
	assert.Empty(t, visits)
}
