package gopherd

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshgopher/internal/gopher"
)

// startServer builds a content root, serves it on a random port and
// returns a Gopher client URL factory for it.
func startServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	gophermap := strings.Join([]string{
		"iWelcome to the local hole\t\tfake\t0",
		"0About\t/about.txt\tlocalhost\t7070",
		"1Docs\t/docs\tlocalhost\t7070",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "gophermap"), []byte(gophermap), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "about.txt"), []byte("line one\nline two\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "gophermap"), []byte("0Readme\t/docs/readme.txt\tlocalhost\t7070\n.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "readme.txt"), []byte("readme body\n"), 0o644))

	srv, err := New(root)
	require.NoError(t, err)
	require.NoError(t, srv.Listen("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv
}

func urlFor(t *testing.T, srv *Server, typeChar byte, selector string) gopher.URL {
	t.Helper()
	host, port, err := splitAddr(srv.Addr())
	require.NoError(t, err)
	return gopher.URL{Host: host, Port: port, Type: typeChar, Selector: selector}
}

func splitAddr(addr string) (string, int, error) {
	i := strings.LastIndex(addr, ":")
	port, err := strconv.Atoi(addr[i+1:])
	return addr[:i], port, err
}

func TestServeRootMenu(t *testing.T) {
	srv := startServer(t)
	c := gopher.NewClient(2 * time.Second)

	listing, err := c.Fetch(context.Background(), urlFor(t, srv, gopher.TypeMenu, ""))
	require.NoError(t, err)
	require.Equal(t, gopher.KindMenu, listing.Kind)
	require.Len(t, listing.Items, 3)
	assert.Equal(t, byte(gopher.TypeInfo), listing.Items[0].Type)
	assert.Equal(t, "About", listing.Items[1].Display)
	assert.Equal(t, "/about.txt", listing.Items[1].Selector)
}

func TestServeSubdirectoryMenu(t *testing.T) {
	srv := startServer(t)
	c := gopher.NewClient(2 * time.Second)

	listing, err := c.Fetch(context.Background(), urlFor(t, srv, gopher.TypeMenu, "/docs"))
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "Readme", listing.Items[0].Display)
}

func TestServeTextFile(t *testing.T) {
	srv := startServer(t)
	c := gopher.NewClient(2 * time.Second)

	listing, err := c.Fetch(context.Background(), urlFor(t, srv, gopher.TypeFile, "/about.txt"))
	require.NoError(t, err)
	require.Equal(t, gopher.KindFile, listing.Kind)
	assert.Equal(t, []string{"line one", "line two"}, listing.Lines)
}

func TestServeMissingSelector(t *testing.T) {
	srv := startServer(t)
	c := gopher.NewClient(2 * time.Second)

	listing, err := c.Fetch(context.Background(), urlFor(t, srv, gopher.TypeMenu, "/nope"))
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, byte(gopher.TypeError), listing.Items[0].Type)
	assert.Contains(t, listing.Items[0].Display, "Selector not found")
}

func TestServeRejectsTraversal(t *testing.T) {
	srv := startServer(t)
	c := gopher.NewClient(2 * time.Second)

	listing, err := c.Fetch(context.Background(), urlFor(t, srv, gopher.TypeMenu, "/../../etc"))
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, byte(gopher.TypeError), listing.Items[0].Type)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestResolver(t *testing.T) {
	resolve := Resolver("127.0.0.1:7070")

	url, err := resolve("local")
	require.NoError(t, err)
	assert.Equal(t, "gopher://127.0.0.1:7070/1/", url)

	url, err = resolve("local/docs/Readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "gopher://127.0.0.1:7070/1/docs/Readme.txt", url)

	_, err = Resolver("")("local")
	assert.Error(t, err)
}
