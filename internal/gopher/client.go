package gopher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds the whole connect+read cycle of one request so a
// slow remote server cannot stall a user's session indefinitely.
const DefaultTimeout = 15 * time.Second

// Client is a minimal Gopher protocol client. One connection is opened
// and closed per request; there are no retries.
type Client struct {
	Timeout time.Duration

	// dial is swappable for tests.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewClient creates a client with the given request timeout. A zero
// timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &net.Dialer{Timeout: timeout}
	return &Client{Timeout: timeout, dial: d.DialContext}
}

// Fetch retrieves the resource behind a gopher URL and parses it into a
// menu or file listing depending on the URL's item type.
func (c *Client) Fetch(ctx context.Context, u URL) (*Listing, error) {
	switch u.Type {
	case TypeMenu:
		lines, err := c.request(ctx, u.Host, u.Port, u.Selector)
		if err != nil {
			return nil, err
		}
		return c.parseMenuListing(lines, u)
	case TypeFile:
		lines, err := c.request(ctx, u.Host, u.Port, u.Selector)
		if err != nil {
			return nil, err
		}
		return &Listing{Kind: KindFile, Lines: lines}, nil
	case TypeSearch:
		return nil, fmt.Errorf("%w: search endpoints need terms, use Search", ErrInvalidOperation)
	default:
		return nil, fmt.Errorf("%w: unsupported item type %q", ErrInvalidOperation, string(u.Type))
	}
}

// Search issues the search sub-protocol request for a search-type item:
// the item's selector, a TAB, and the terms. The result is a menu.
func (c *Client) Search(ctx context.Context, item Item, terms string) (*Listing, error) {
	if item.Type != TypeSearch {
		return nil, fmt.Errorf("%w: item type %q is not searchable", ErrInvalidOperation, string(item.Type))
	}
	origin := URL{Host: item.Host, Port: item.Port, Type: TypeMenu, Selector: item.Selector}
	lines, err := c.request(ctx, item.Host, item.Port, item.Selector+"\t"+terms)
	if err != nil {
		return nil, err
	}
	return c.parseMenuListing(lines, origin)
}

func (c *Client) parseMenuListing(lines []string, origin URL) (*Listing, error) {
	items := ParseMenu(lines, origin)
	if len(items) == 0 && hasContent(lines) {
		return nil, fmt.Errorf("%w: no menu entries in %d-line response from %s", ErrProtocol, len(lines), origin.Host)
	}
	return &Listing{Kind: KindMenu, Items: items}, nil
}

// request performs one round trip: connect, send the selector line,
// read until the server closes the connection.
func (c *Client) request(ctx context.Context, host string, port int, selector string) ([]string, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyNetErr(addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if _, err := io.WriteString(conn, selector+"\r\n"); err != nil {
		return nil, classifyNetErr(addr, err)
	}
	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, classifyNetErr(addr, err)
	}
	return SplitBody(string(raw)), nil
}

func classifyNetErr(addr string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, addr, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrConnect, addr, err)
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if l != "" && l != "." {
			return true
		}
	}
	return false
}
