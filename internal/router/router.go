// Package router interprets incoming DM text as navigation commands and
// drives a user's session through the Gopher client and pager.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"meshgopher/internal/gopher"
	"meshgopher/internal/pager"
	"meshgopher/internal/session"
)

// Fetcher is the slice of the Gopher client the router needs. Swappable
// for tests.
type Fetcher interface {
	Fetch(ctx context.Context, u gopher.URL) (*gopher.Listing, error)
	Search(ctx context.Context, item gopher.Item, terms string) (*gopher.Listing, error)
}

// Config carries the page sizes. They are configuration, not part of
// the paging algorithm.
type Config struct {
	MenuPageSize int
	FilePageSize int
	// Home is the URL suggested to users with nothing open.
	Home string
}

// DefaultConfig returns the page sizes used when none are configured.
func DefaultConfig() Config {
	return Config{MenuPageSize: 10, FilePageSize: 20, Home: defaultHome}
}

// Router maps command text onto session transitions. It is stateless
// itself; all state lives in the Session passed to Handle.
type Router struct {
	client       Fetcher
	cfg          Config
	resolveAlias func(path string) (string, error)
	log          *slog.Logger

	// OnVisit is called after each successful fetch (metrics/visit log).
	OnVisit func(userID, url string, kind gopher.Kind)
	// OnCommand is called once per handled command with the verb and
	// its outcome ("ok", "rejected" or "error").
	OnCommand func(verb, outcome string)
}

// New creates a router. resolveAlias may be nil when no local content
// is served.
func New(client Fetcher, cfg Config, resolveAlias func(string) (string, error)) *Router {
	if cfg.MenuPageSize < 1 {
		cfg.MenuPageSize = 10
	}
	if cfg.FilePageSize < 1 {
		cfg.FilePageSize = 20
	}
	if cfg.Home == "" {
		cfg.Home = defaultHome
	}
	return &Router{
		client:       client,
		cfg:          cfg,
		resolveAlias: resolveAlias,
		log:          slog.With("component", "router"),
	}
}

// Handle processes one command for the session and returns the reply
// text. The caller must already hold the session's lock. Every failure
// is mapped to a short user-readable reply; the session keeps its prior
// state whenever the command does not complete.
func (r *Router) Handle(ctx context.Context, s *session.Session, text string) string {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return r.done("", "rejected", helpText)
	}

	fields := strings.Fields(msg)
	verb := strings.ToLower(fields[0])
	rest := strings.TrimSpace(msg[len(fields[0]):])

	switch {
	case verb == "u":
		if rest == "" {
			return r.done(verb, "rejected", "Usage: u <gopher URL>")
		}
		return r.openURL(ctx, s, verb, fields[1])
	case verb == "n":
		return r.turnPage(s, verb, +1)
	case verb == "p":
		return r.turnPage(s, verb, -1)
	case verb == "b":
		return r.back(s)
	case verb == "s":
		return r.search(ctx, s, rest)
	case len(verb) == 1 && verb[0] >= '0' && verb[0] <= '9':
		return r.selectDigit(ctx, s, verb, int(verb[0]-'0'))
	default:
		return r.done(verb, "rejected", helpText)
	}
}

// openURL handles "u <url>", including the bot-defined "local" alias.
func (r *Router) openURL(ctx context.Context, s *session.Session, verb, raw string) string {
	if isLocalAlias(raw) {
		if r.resolveAlias == nil {
			return r.done(verb, "rejected", "No local content is configured on this bot.")
		}
		resolved, err := r.resolveAlias(raw)
		if err != nil {
			return r.done(verb, "error", "Could not resolve local path: "+err.Error())
		}
		raw = resolved
	}

	u, err := gopher.ParseURL(raw)
	if err != nil {
		return r.done(verb, "rejected", "Invalid URL: "+err.Error())
	}

	if u.Type == gopher.TypeSearch {
		// A type-7 URL is a search endpoint: prompt for terms instead
		// of fetching.
		item := gopher.Item{Type: gopher.TypeSearch, Display: "[SEARCH]", Selector: u.Selector, Host: u.Host, Port: u.Port}
		s.PendingSearch = &item
		return r.done(verb, "ok", searchPrompt(""))
	}

	listing, err := r.client.Fetch(ctx, u)
	if err != nil {
		return r.done(verb, "error", fetchErrorReply(err, u.Host))
	}

	s.Push()
	s.SetCurrent(u.String(), listing)
	s.ClearPending()
	r.visited(s, listing)
	return r.done(verb, "ok", r.render(s))
}

// turnPage handles "n" and "p".
func (r *Router) turnPage(s *session.Session, verb string, dir int) string {
	if s.Current.Listing == nil {
		return r.done(verb, "rejected", r.nothingOpen())
	}
	s.ClearPending()

	l := s.Current.Listing
	count := pager.Count(l, r.pageSize(l))
	next := s.Current.PageIndex + dir

	switch {
	case next >= count:
		if l.Kind == gopher.KindMenu {
			return r.done(verb, "rejected", "End of menu.")
		}
		return r.done(verb, "rejected", "End of file.")
	case next < 0:
		return r.done(verb, "rejected", "Already at start.")
	}

	s.Current.PageIndex = next
	return r.done(verb, "ok", r.render(s))
}

// back handles "b": pop one history entry, possibly back to the empty
// starting state.
func (r *Router) back(s *session.Session) string {
	s.ClearPending()
	if !s.Pop() {
		return r.done("b", "rejected", "Nothing to go back to.")
	}
	s.IndexMap = nil
	if s.Current.Empty() {
		return r.done("b", "ok", r.nothingOpen())
	}
	return r.done("b", "ok", r.render(s))
}

// selectDigit handles "0".."9" against the current menu page.
func (r *Router) selectDigit(ctx context.Context, s *session.Session, verb string, idx int) string {
	l := s.Current.Listing
	if l == nil || l.Kind != gopher.KindMenu {
		return r.done(verb, "rejected", "Not in a menu; numbers apply only to menu listings.")
	}

	page := pager.Slice(l, s.Current.PageIndex, r.cfg.MenuPageSize)
	if idx >= len(page.IndexMap) {
		return r.done(verb, "rejected", "Invalid selection on this page.")
	}
	item := page.IndexMap[idx]

	switch item.Type {
	case gopher.TypeSearch:
		s.PendingSearch = &item
		return r.done(verb, "ok", searchPrompt(item.Display))
	case gopher.TypeFile, gopher.TypeMenu:
		u := item.URL()
		listing, err := r.client.Fetch(ctx, u)
		if err != nil {
			return r.done(verb, "error", fetchErrorReply(err, u.Host))
		}
		s.Push()
		s.SetCurrent(u.String(), listing)
		s.ClearPending()
		r.visited(s, listing)
		return r.done(verb, "ok", r.render(s))
	default:
		return r.done(verb, "rejected",
			fmt.Sprintf("Item type %q is not supported here. Pick another entry.", string(item.Type)))
	}
}

// search handles "s <terms>" against the pending search endpoint.
func (r *Router) search(ctx context.Context, s *session.Session, terms string) string {
	if terms == "" {
		return r.done("s", "rejected", "Usage: s <search terms>")
	}
	if s.PendingSearch == nil {
		return r.done("s", "rejected", "No search pending. Select a search item first, then use 's <terms>'.")
	}
	item := *s.PendingSearch

	listing, err := r.client.Search(ctx, item, terms)
	if err != nil {
		// Keep the pending endpoint so the user can retry.
		return r.done("s", "error", fetchErrorReply(err, item.Host))
	}

	u := gopher.URL{Host: item.Host, Port: item.Port, Type: gopher.TypeMenu, Selector: item.Selector}
	s.Push()
	s.SetCurrent(u.String(), listing)
	s.ClearPending()
	r.visited(s, listing)
	return r.done("s", "ok", r.render(s))
}

func (r *Router) pageSize(l *gopher.Listing) int {
	if l != nil && l.Kind == gopher.KindFile {
		return r.cfg.FilePageSize
	}
	return r.cfg.MenuPageSize
}

func (r *Router) visited(s *session.Session, l *gopher.Listing) {
	if r.OnVisit != nil {
		r.OnVisit(s.UserID, s.Current.URL, l.Kind)
	}
}

func (r *Router) done(verb, outcome, reply string) string {
	if r.OnCommand != nil {
		r.OnCommand(verb, outcome)
	}
	return reply
}

// isLocalAlias matches "local", "local/..." in any case.
func isLocalAlias(raw string) bool {
	low := strings.ToLower(raw)
	return low == "local" || strings.HasPrefix(low, "local/")
}

// fetchErrorReply maps the client's error taxonomy onto short replies.
// The session was not touched, so the user can simply retry.
func fetchErrorReply(err error, host string) string {
	switch {
	case errors.Is(err, gopher.ErrTimeout):
		return "Timed out waiting for " + host + ". Try again later."
	case errors.Is(err, gopher.ErrConnect):
		return "Could not connect to " + host + "."
	case errors.Is(err, gopher.ErrProtocol):
		return "Got an unreadable response from " + host + "."
	case errors.Is(err, gopher.ErrInvalidOperation):
		return "That item cannot be opened here."
	default:
		return "Fetch failed: " + err.Error()
	}
}
