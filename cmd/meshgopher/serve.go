package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meshgopher/internal/bridge"
	"meshgopher/internal/chunker"
	"meshgopher/internal/db"
	"meshgopher/internal/gopher"
	"meshgopher/internal/gopherd"
	"meshgopher/internal/metrics"
	"meshgopher/internal/router"
	"meshgopher/internal/session"
	"meshgopher/internal/transport"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the DM-to-Gopher bridge",
		Long: `Connect to the message transport and serve Gopher navigation
commands from direct messages until interrupted.`,
		RunE: runServe,
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics()

	var store db.Store
	if viper.GetBool("db.enabled") {
		s, err := db.NewStore(db.StoreConfig{
			Type:             viper.GetString("db.type"),
			ConnectionString: viper.GetString("db.connection_string"),
		})
		if err != nil {
			slog.Warn("visit log disabled", "error", err)
		} else {
			store = s
			defer s.Close()
		}
	}

	var resolveAlias func(string) (string, error)
	if viper.GetBool("gopherd.enabled") {
		srv, err := gopherd.New(viper.GetString("gopherd.root"))
		if err != nil {
			return fmt.Errorf("local gopher server: %w", err)
		}
		if err := srv.Listen(viper.GetString("gopherd.addr")); err != nil {
			return fmt.Errorf("local gopher server: %w", err)
		}
		go func() {
			if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("local gopher server stopped", "error", err)
			}
		}()
		resolveAlias = gopherd.Resolver(srv.Addr())
		slog.Info("local gopher server listening", "addr", srv.Addr())
	}

	client := gopher.NewClient(viper.GetDuration("gopher.timeout"))
	fetcher := &timedFetcher{inner: client, metrics: m}

	rtr := router.New(fetcher, router.Config{
		MenuPageSize: viper.GetInt("pager.menu_page_size"),
		FilePageSize: viper.GetInt("pager.file_page_size"),
		Home:         viper.GetString("gopher.home"),
	}, resolveAlias)
	rtr.OnCommand = func(verb, outcome string) {
		m.CommandsTotal.WithLabelValues(verb, outcome).Inc()
	}
	rtr.OnVisit = func(userID, url string, kind gopher.Kind) {
		m.FetchesTotal.WithLabelValues(kind.String()).Inc()
		if store != nil {
			if err := store.RecordVisit(userID, url, kind.String()); err != nil {
				slog.Warn("failed to record visit", "error", err)
			}
		}
	}

	sessions := session.NewStore(viper.GetDuration("session.idle_ttl"))
	sessions.OnEvict = func(n int) {
		m.SessionsEvicted.Add(float64(n))
		m.ActiveSessions.Set(float64(sessions.Len()))
	}
	go sessions.StartSweeper(ctx, viper.GetDuration("session.sweep_interval"))

	if !viper.GetBool("slack.enabled") {
		return errors.New("no transport configured: set SLACK_BOT_TOKEN and SLACK_APP_TOKEN")
	}
	tr, err := transport.NewSlackTransport(os.Getenv("SLACK_BOT_TOKEN"), os.Getenv("SLACK_APP_TOKEN"))
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}

	pacer := chunker.NewPacer(tr, viper.GetInt("chunker.chunk_bytes"), viper.GetDuration("chunker.delay"))
	pacer.OnChunkSent = func() { m.ChunksSent.Inc() }
	pacer.OnSendFailure = func() { m.SendFailures.Inc() }

	b := bridge.New(tr, rtr, sessions, pacer, viper.GetInt("bridge.queue_size"))
	b.OnMessage = func() {
		m.MessagesReceived.Inc()
		m.ActiveSessions.Set(float64(sessions.Len()))
	}

	if viper.GetBool("metrics.enabled") {
		startMetricsServer(ctx, m, viper.GetString("metrics.addr"))
	}

	slog.Info("bridge starting",
		"gopher_timeout", viper.GetDuration("gopher.timeout"),
		"chunk_bytes", viper.GetInt("chunker.chunk_bytes"),
		"idle_ttl", viper.GetDuration("session.idle_ttl"))

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("bridge stopped")
	return nil
}

func startMetricsServer(ctx context.Context, m *metrics.Metrics, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()
}

// timedFetcher records fetch latency around the underlying client.
type timedFetcher struct {
	inner   *gopher.Client
	metrics *metrics.Metrics
}

func (t *timedFetcher) Fetch(ctx context.Context, u gopher.URL) (*gopher.Listing, error) {
	start := time.Now()
	l, err := t.inner.Fetch(ctx, u)
	t.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	return l, err
}

func (t *timedFetcher) Search(ctx context.Context, item gopher.Item, terms string) (*gopher.Listing, error) {
	start := time.Now()
	l, err := t.inner.Search(ctx, item, terms)
	t.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	return l, err
}
