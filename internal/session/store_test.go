package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshgopher/internal/gopher"
)

func TestStoreLazyCreate(t *testing.T) {
	st := NewStore(0)
	assert.Equal(t, 0, st.Len())

	st.With("!user1", func(s *Session) {
		assert.Equal(t, "!user1", s.UserID)
		assert.True(t, s.Current.Empty())
	})
	assert.Equal(t, 1, st.Len())

	// Same id returns the same session.
	st.With("!user1", func(s *Session) { s.Current.URL = "gopher://example.org:70/1" })
	st.With("!user1", func(s *Session) {
		assert.Equal(t, "gopher://example.org:70/1", s.Current.URL)
	})
	assert.Equal(t, 1, st.Len())
}

func TestStoreSerializesPerUser(t *testing.T) {
	st := NewStore(0)
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.With("!same", func(s *Session) {
				// Non-atomic read-modify-write: only safe when With
				// really serializes.
				v := len(s.History)
				s.History = append(s.History[:v], Snapshot{})
			})
		}()
	}
	wg.Wait()

	st.With("!same", func(s *Session) {
		assert.Len(t, s.History, n)
	})
}

func TestStoreIndependentUsers(t *testing.T) {
	st := NewStore(0)
	release := make(chan struct{})
	started := make(chan struct{})

	go st.With("!slow", func(s *Session) {
		close(started)
		<-release
	})

	<-started
	done := make(chan struct{})
	go func() {
		st.With("!fast", func(s *Session) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second user blocked behind first user's session")
	}
	close(release)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	st := NewStore(time.Minute)
	current := time.Unix(1000000, 0)
	st.now = func() time.Time { return current }

	st.With("!old", func(s *Session) {})
	current = current.Add(2 * time.Minute)
	st.With("!fresh", func(s *Session) {})

	var evicted int
	st.OnEvict = func(n int) { evicted += n }

	require.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1, evicted)

	st.With("!fresh", func(s *Session) {
		assert.Equal(t, "!fresh", s.UserID)
	})
}

func TestSweepDisabledByZeroTTL(t *testing.T) {
	st := NewStore(0)
	st.With("!u", func(s *Session) {})
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

func TestSweepSkipsBusySessions(t *testing.T) {
	st := NewStore(time.Nanosecond)
	release := make(chan struct{})
	started := make(chan struct{})

	go st.With("!busy", func(s *Session) {
		close(started)
		<-release
	})
	<-started

	time.Sleep(5 * time.Millisecond) // well past the TTL
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())
	close(release)
}

func TestSessionHistory(t *testing.T) {
	s := &Session{UserID: "!u"}

	assert.False(t, s.Pop(), "empty history must be a no-op")

	// First open pushes the Empty state.
	s.Push()
	s.SetCurrent("gopher://a:70/1", &gopher.Listing{Kind: gopher.KindMenu})
	s.Push()
	s.SetCurrent("gopher://b:70/1", &gopher.Listing{Kind: gopher.KindMenu})

	require.True(t, s.Pop())
	assert.Equal(t, "gopher://a:70/1", s.Current.URL)

	require.True(t, s.Pop())
	assert.True(t, s.Current.Empty(), "popping past the first open returns to the empty state")

	assert.False(t, s.Pop())
}
