package router

import (
	"fmt"
	"strings"

	"meshgopher/internal/gopher"
	"meshgopher/internal/pager"
	"meshgopher/internal/session"
)

const defaultHome = "gopher://gopher.floodgap.com/"

func (r *Router) nothingOpen() string {
	return "Nothing open yet. Try: u " + r.cfg.Home
}

const helpText = `Gopher DM navigator
Commands:
  u <url>      open a gopher URL (e.g. gopher://gopher.floodgap.com/1/world)
  n            next page
  p            previous page
  b            back / up one level
  0-9          select visible menu entry by displayed digit
  s <terms>    submit search terms for a previously selected search item`

// render produces exactly one page of output for the current position
// and refreshes the session's digit index map.
func (r *Router) render(s *session.Session) string {
	l := s.Current.Listing
	if l == nil {
		return r.nothingOpen()
	}

	page := pager.Slice(l, s.Current.PageIndex, r.pageSize(l))
	header := "[" + s.Current.URL + "]"

	if l.Kind == gopher.KindFile {
		s.IndexMap = nil
		return renderFilePage(header, page)
	}

	s.IndexMap = page.IndexMap
	return renderMenuPage(header, page)
}

func renderMenuPage(header string, page pager.Page) string {
	if page.Total == 0 {
		return header + "\n(Empty menu)\nCommands: u <URL>, b"
	}

	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\nShowing items %d-%d of %d:", page.Start+1, page.Start+len(page.IndexMap), page.Total)
	for i, it := range page.IndexMap {
		disp := it.Display
		if disp == "" {
			disp = "(no title)"
		}
		fmt.Fprintf(&b, "\n%d) [%c] %s", i, it.Type, disp)
	}
	b.WriteString("\nCommands: number to select, n (next), p (prev), b (back), u <URL>")
	return b.String()
}

func renderFilePage(header string, page pager.Page) string {
	var b strings.Builder
	b.WriteString(header)
	if page.Total == 0 {
		b.WriteString("\n(Empty file)")
	} else {
		b.WriteString("\n")
		b.WriteString(strings.Join(page.Lines, "\n"))
		fmt.Fprintf(&b, "\n[Lines %d-%d of %d]", page.Start+1, page.Start+len(page.Lines), page.Total)
	}
	b.WriteString("\nCommands: n, p, b, u <URL>")
	return b.String()
}

// searchPrompt asks the user for terms after a search endpoint was
// selected.
func searchPrompt(title string) string {
	if title == "" {
		return "Search\nSend: s <terms>"
	}
	return "Search: " + title + "\nSend: s <terms>"
}
