package gopherd

import (
	"fmt"
	"strings"
)

// Resolver maps the "local" command alias onto concrete gopher URLs
// pointing at a server address ("host:port"). "local" opens the root
// menu, "local/docs/readme.txt" the matching selector.
func Resolver(addr string) func(path string) (string, error) {
	return func(path string) (string, error) {
		if addr == "" {
			return "", fmt.Errorf("no local gopher server is running")
		}
		rest := path
		if len(rest) >= 5 && strings.EqualFold(rest[:5], "local") {
			rest = rest[5:]
		}
		rest = strings.TrimPrefix(rest, "/")
		return fmt.Sprintf("gopher://%s/1/%s", addr, rest), nil
	}
}
