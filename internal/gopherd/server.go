// Package gopherd is a minimal file-backed Gopher server for demo and
// local content. Directories are described by a gophermap file; plain
// files are served as text.
package gopherd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const crlf = "\r\n"

// mapNames are the gophermap filenames probed in order.
var mapNames = []string{"gophermap", ".gophermap"}

// Server serves a directory tree over the Gopher protocol.
type Server struct {
	root string
	ln   net.Listener
	log  *slog.Logger

	ReadTimeout time.Duration
}

// New creates a server rooted at dir.
func New(dir string) (*Server, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("gopherd root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("gopherd root %s is not a directory", abs)
	}
	return &Server{
		root:        abs,
		log:         slog.With("component", "gopherd"),
		ReadTimeout: 10 * time.Second,
	}, nil
}

// Listen binds the address. Use port 0 to pick a free port; Addr
// reports the bound address afterwards.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Serve accepts connections until the context ends or the listener is
// closed.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("gopherd: Serve before Listen")
	}
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()
	s.log.Info("serving gopher content", "addr", s.Addr(), "root", s.root)

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.ReadTimeout))

	selector, err := readSelector(conn)
	if err != nil {
		return
	}
	resp := s.dispatch(selector)
	if _, err := conn.Write(resp); err != nil {
		s.log.Debug("write failed", "error", err)
	}
}

// readSelector reads the request line up to the newline.
func readSelector(conn net.Conn) (string, error) {
	buf := make([]byte, 0, 256)
	tmp := make([]byte, 128)
	for {
		n, err := conn.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if i := strings.IndexByte(string(buf), '\n'); i >= 0 {
			return strings.TrimRight(string(buf[:i]), "\r"), nil
		}
		if err != nil {
			return "", err
		}
		if len(buf) > 4096 {
			return "", errors.New("request line too long")
		}
	}
}

func (s *Server) dispatch(selector string) []byte {
	// Strip any search-terms tail; this server has no search indexes.
	path := selector
	if i := strings.IndexByte(path, '\t'); i >= 0 {
		path = path[:i]
	}
	rel := strings.TrimPrefix(path, "/")

	fsPath := filepath.Join(s.root, filepath.FromSlash(rel))
	// Keep traversal inside the root.
	if fsPath != s.root && !strings.HasPrefix(fsPath, s.root+string(filepath.Separator)) {
		return errorMenu("Selector not found: " + path)
	}

	info, err := os.Stat(fsPath)
	switch {
	case err != nil:
		display := path
		if display == "" {
			display = "/"
		}
		return errorMenu("Selector not found: " + display)
	case info.IsDir():
		return s.serveMenu(fsPath)
	default:
		return s.serveTextFile(fsPath)
	}
}

func (s *Server) serveMenu(dir string) []byte {
	mapPath := findGophermap(dir)
	if mapPath == "" {
		return errorMenu("No gophermap in this directory")
	}
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return errorMenu("Failed to read menu: " + err.Error())
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 || lines[len(lines)-1] != "." {
		lines = append(lines, ".")
	}
	return []byte(strings.Join(lines, crlf) + crlf)
}

func (s *Server) serveTextFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return errorMenu("Failed to read file: " + err.Error())
	}
	body := strings.ReplaceAll(string(data), "\r\n", "\n")
	body = strings.TrimRight(body, "\n")
	return []byte(body + crlf + "." + crlf)
}

func errorMenu(message string) []byte {
	lines := []string{"3" + message + "\tfake\tlocalhost\t0", "."}
	return []byte(strings.Join(lines, crlf) + crlf)
}

func findGophermap(dir string) string {
	for _, name := range mapNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
