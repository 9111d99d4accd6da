// Package api provides the HTTP server and handlers for LinkBrief.
//
// It exposes the Slack events webhook and a health endpoint, and wires the
// store, idempotency cache, fetcher, summarizer and replier modules together
// at startup.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/linkbrief/linkbrief/internal/dedup"
	"github.com/linkbrief/linkbrief/internal/fetch"
	"github.com/linkbrief/linkbrief/internal/messaging"
	"github.com/linkbrief/linkbrief/internal/pipeline"
	"github.com/linkbrief/linkbrief/internal/store"
	"github.com/linkbrief/linkbrief/internal/summarize"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3000"

// Opts holds configuration for the API server and its modules.
type Opts struct {
	Addr              string
	SlackToken        string
	DBDriver          string
	DBDSN             string
	CacheCapacity     int
	MarkAfterDispatch bool
	SummaryTimeout    time.Duration
	ReplyTimeout      time.Duration
	FetchOpts         []fetch.Option
	SummarizeOpts     []summarize.Option
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithSlackToken sets the Slack bot token for posting replies.
func WithSlackToken(token string) Option {
	return func(o *Opts) { o.SlackToken = token }
}

// WithDatabase selects the store backend ("sqlite3" or "postgres") and DSN.
func WithDatabase(driver, dsn string) Option {
	return func(o *Opts) {
		o.DBDriver = driver
		o.DBDSN = dsn
	}
}

// WithCacheCapacity sets the idempotency cache capacity.
func WithCacheCapacity(n int) Option {
	return func(o *Opts) { o.CacheCapacity = n }
}

// WithMarkAfterDispatch selects at-least-once marking after a successful
// reply instead of the default mark-before-dispatch ordering.
func WithMarkAfterDispatch(enabled bool) Option {
	return func(o *Opts) { o.MarkAfterDispatch = enabled }
}

// WithTimeouts bounds the summarizer and reply calls.
func WithTimeouts(summary, reply time.Duration) Option {
	return func(o *Opts) {
		o.SummaryTimeout = summary
		o.ReplyTimeout = reply
	}
}

// WithFetchOptions passes options through to the content fetcher.
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(o *Opts) { o.FetchOpts = append(o.FetchOpts, opts...) }
}

// WithSummarizeOptions passes options through to the summarizer client.
func WithSummarizeOptions(opts ...summarize.Option) Option {
	return func(o *Opts) { o.SummarizeOpts = append(o.SummarizeOpts, opts...) }
}

// Server handles the inbound webhook HTTP surface.
type Server struct {
	pipe *pipeline.Pipeline
}

// NewServer creates a Server around an assembled pipeline.
func NewServer(pipe *pipeline.Pipeline) *Server {
	return &Server{pipe: pipe}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/events", s.eventsHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	return mux
}

// Run assembles all modules from the provided options and serves HTTP until
// the listener fails.
func Run(opts ...Option) error {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	repo, err := newSeenRepo(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	cache := dedup.Load(repo, cfg.CacheCapacity)

	fetcher := fetch.NewFetcher(cfg.FetchOpts...)

	summarizer, err := summarize.NewClient(cfg.SummarizeOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	replier, err := messaging.NewSlackService(cfg.SlackToken)
	if err != nil {
		return fmt.Errorf("failed to initialize Slack client: %w", err)
	}

	pipe := pipeline.New(cache, fetcher, summarizer, replier, pipeline.Config{
		MarkAfterDispatch: cfg.MarkAfterDispatch,
		SummaryTimeout:    cfg.SummaryTimeout,
		ReplyTimeout:      cfg.ReplyTimeout,
	})
	server := NewServer(pipe)

	slog.Info("LinkBrief API running", "addr", cfg.Addr, "db_driver", cfg.DBDriver, "cache_capacity", cfg.CacheCapacity)
	return http.ListenAndServe(cfg.Addr, server.Handler())
}

// newSeenRepo opens the configured store backend. Postgres is selected by
// driver name; everything else defaults to SQLite.
func newSeenRepo(cfg Opts) (store.SeenRepo, error) {
	switch cfg.DBDriver {
	case "postgres":
		return store.NewPostgresStore(store.WithPostgresDSN(cfg.DBDSN))
	default:
		return store.NewSQLiteStore(store.WithSQLiteDSN(cfg.DBDSN))
	}
}
