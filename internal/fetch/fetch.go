// Package fetch retrieves web pages and extracts readable article content.
//
// Pages are fetched with a bounded timeout, run through readability to
// isolate the article body, and converted to markdown for the summarizer.
// Hosts known to reject automated access are refused up front with
// ErrBlockedHost so the caller can produce a friendlier reply.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// MaxContentLength caps the extracted content handed to the summarizer.
const MaxContentLength = 15000

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// userAgent identifies the bot to fetched sites.
const userAgent = "LinkBrief/1.0 (+https://github.com/linkbrief/linkbrief)"

// DefaultBlockedHosts lists hosts that reject automated fetches outright.
var DefaultBlockedHosts = []string{
	"www.sciencedirect.com",
	"sciencedirect.com",
	"linkinghub.elsevier.com",
}

// ErrBlockedHost marks a URL whose host is known to refuse automated access.
var ErrBlockedHost = errors.New("host blocks automated access")

// StatusError reports a non-2xx HTTP response from the fetched site.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// Opts holds configuration options for the fetcher.
type Opts struct {
	Timeout      time.Duration
	BlockedHosts []string
	Client       *http.Client
}

// Option configures a Fetcher.
type Option func(*Opts)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithBlockedHosts replaces the default blocked-host list.
func WithBlockedHosts(hosts []string) Option {
	return func(o *Opts) { o.BlockedHosts = hosts }
}

// WithHTTPClient sets a custom HTTP client. The configured timeout still
// applies per request via context.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.Client = c }
}

// Fetcher retrieves pages and extracts their readable content.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	blocked map[string]struct{}
}

// NewFetcher creates a Fetcher from the provided options.
func NewFetcher(opts ...Option) *Fetcher {
	cfg := Opts{
		Timeout:      DefaultTimeout,
		BlockedHosts: DefaultBlockedHosts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	blocked := make(map[string]struct{}, len(cfg.BlockedHosts))
	for _, h := range cfg.BlockedHosts {
		blocked[strings.ToLower(h)] = struct{}{}
	}
	return &Fetcher{client: client, timeout: cfg.Timeout, blocked: blocked}
}

// Fetch downloads the page at rawURL and returns its readable content as
// markdown, truncated to MaxContentLength. It returns ErrBlockedHost for
// hosts on the blocked list and a *StatusError for non-2xx responses.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	host := strings.ToLower(parsed.Hostname())
	if _, ok := f.blocked[host]; ok {
		slog.Debug("fetch.Fetch: refusing blocked host", "host", host)
		return "", fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("fetch.Fetch: non-2xx response", "url", rawURL, "status", resp.StatusCode)
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}

	content := extractReadable(body, parsed)
	if len(content) > MaxContentLength {
		content = content[:MaxContentLength]
	}
	slog.Debug("fetch.Fetch: page fetched", "url", rawURL, "content_len", len(content))
	return content, nil
}

// extractReadable isolates the article content of the page and converts it
// to markdown. When readability cannot find an article node the whole page
// text is used; when markdown conversion fails the plain text content is
// returned instead.
func extractReadable(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		slog.Debug("fetch.extractReadable: readability failed, using raw body", "error", err)
		return string(body)
	}
	if md, err := htmltomarkdown.ConvertString(article.Content); err == nil && strings.TrimSpace(md) != "" {
		return md
	}
	return article.TextContent
}
