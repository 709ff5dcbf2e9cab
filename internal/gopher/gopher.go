package gopher

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPort is the well-known Gopher port.
const DefaultPort = 70

// Item type characters we care about. Anything else is carried through
// as-is and treated as unsupported at selection time.
const (
	TypeFile   = '0'
	TypeMenu   = '1'
	TypeError  = '3'
	TypeSearch = '7'
	TypeInfo   = 'i'
)

// validTypes is the set of single-character item types a gopher URL may
// carry in its first path position.
const validTypes = "0123456789+ghIisTtP;,dcruwWXsM"

// Item is one entry of a Gopher menu.
type Item struct {
	Type     byte   `json:"type"`
	Display  string `json:"display"`
	Selector string `json:"selector"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// Selectable reports whether the item can be the target of a digit
// selection. Info lines are display-only.
func (it Item) Selectable() bool {
	return it.Type != TypeInfo
}

// URL reconstructs an absolute gopher URL for the item.
func (it Item) URL() URL {
	return URL{Host: it.Host, Port: it.Port, Type: it.Type, Selector: it.Selector}
}

// Kind tags the two listing variants.
type Kind int

const (
	KindMenu Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "menu"
}

// Listing is what a session is currently viewing: either a parsed menu
// or the lines of a text file.
type Listing struct {
	Kind  Kind
	Items []Item   // populated when Kind == KindMenu
	Lines []string // populated when Kind == KindFile
}

// SelectableItems returns the menu entries that can receive a digit
// label, in server order. Nil for file listings.
func (l *Listing) SelectableItems() []Item {
	if l == nil || l.Kind != KindMenu {
		return nil
	}
	out := make([]Item, 0, len(l.Items))
	for _, it := range l.Items {
		if it.Selectable() {
			out = append(out, it)
		}
	}
	return out
}

// URL is a parsed gopher:// URL.
type URL struct {
	Host     string
	Port     int
	Type     byte
	Selector string
}

// String renders the URL in the canonical gopher://host:port/Tselector form.
func (u URL) String() string {
	return fmt.Sprintf("gopher://%s:%d/%c%s", u.Host, u.Port, u.Type, u.Selector)
}

// ParseURL parses an absolute gopher URL. The first character after the
// host portion is the item type; a missing or unknown type character
// means the whole path is the selector of a menu.
func ParseURL(raw string) (URL, error) {
	if !strings.HasPrefix(strings.ToLower(raw), "gopher://") {
		return URL{}, fmt.Errorf("%w: URL must start with gopher://", ErrInvalidURL)
	}

	body := raw[len("gopher://"):]
	hostPort := body
	rest := ""
	if i := strings.Index(body, "/"); i >= 0 {
		hostPort = body[:i]
		rest = body[i+1:]
	}

	host := hostPort
	port := DefaultPort
	if i := strings.Index(hostPort, ":"); i >= 0 {
		host = hostPort[:i]
		p, err := strconv.Atoi(hostPort[i+1:])
		if err != nil {
			return URL{}, fmt.Errorf("%w: bad port %q", ErrInvalidURL, hostPort[i+1:])
		}
		port = p
	}
	if host == "" {
		return URL{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if rest == "" {
		return URL{Host: host, Port: port, Type: TypeMenu, Selector: ""}, nil
	}

	typeChar := rest[0]
	if !strings.ContainsRune(validTypes, rune(typeChar)) {
		// No recognizable type position; treat the path as a menu selector.
		return URL{Host: host, Port: port, Type: TypeMenu, Selector: rest}, nil
	}
	return URL{Host: host, Port: port, Type: typeChar, Selector: rest[1:]}, nil
}

// ParseMenu parses the lines of a menu response into items. Parsing is
// deliberately lenient: malformed lines are dropped, missing hosts and
// ports fall back to the origin server, and the trailing "." terminator
// ends the menu.
func ParseMenu(lines []string, origin URL) []Item {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "." {
			break
		}
		if line == "" {
			continue
		}
		typeChar := line[0]
		fields := strings.Split(line[1:], "\t")

		it := Item{Type: typeChar, Display: fields[0], Host: origin.Host, Port: origin.Port}
		if len(fields) > 1 {
			it.Selector = fields[1]
		}
		if len(fields) > 2 && fields[2] != "" {
			it.Host = fields[2]
		}
		if len(fields) > 3 && fields[3] != "" {
			if p, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
				it.Port = p
			}
		}

		// A selectable entry without a tab-separated selector field is
		// not actionable; drop it rather than handing out a dead digit.
		if it.Selectable() && len(fields) < 2 {
			continue
		}
		items = append(items, it)
	}
	return items
}

// SplitBody turns a raw response into lines, stripping CRs and the
// trailing "." terminator when present.
func SplitBody(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSuffix(raw, "\n")
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "." {
		lines = lines[:n-1]
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
	}
	return lines
}
