// Package pipeline orchestrates the processing of one inbound event:
// normalize, deduplicate, extract a URL, then fetch, summarize and reply.
//
// Every event walks a fixed sequence of states and every state is terminal
// for that event; there are no internal retries. Collaborator failures are
// converted into substitute reply text so the thread always receives an
// answer, and never propagate to the webhook transport.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkbrief/linkbrief/internal/dedup"
	"github.com/linkbrief/linkbrief/internal/events"
	"github.com/linkbrief/linkbrief/internal/extract"
	"github.com/linkbrief/linkbrief/internal/fetch"
	"github.com/linkbrief/linkbrief/internal/messaging"
	"github.com/linkbrief/linkbrief/internal/models"
)

// Default collaborator timeouts. The fetch timeout lives in the fetcher
// itself; these bound the summarizer and reply calls.
const (
	DefaultSummaryTimeout = 60 * time.Second
	DefaultReplyTimeout   = 15 * time.Second
)

// ContentFetcher retrieves readable page content for a URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Summarizer produces a summary for fetched page content.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Outcome is the terminal state of processing one event.
type Outcome string

const (
	// OutcomeDone: the event was dispatched and the reply attempt finished.
	OutcomeDone Outcome = "done"
	// OutcomeSkipped: a skip rule matched (edit, bot message, non-message event).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeAlreadyProcessed: the message id was seen before.
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeNoURL: the message contains no URL; nothing was dispatched.
	OutcomeNoURL Outcome = "no_url"
)

// Status maps an outcome to the API response status reported to the
// webhook transport. A no-URL event is a normal acknowledgment.
func (o Outcome) Status() models.APIStatus {
	switch o {
	case OutcomeSkipped:
		return models.APIStatusSkipped
	case OutcomeAlreadyProcessed:
		return models.APIStatusAlreadyProcessed
	default:
		return models.APIStatusOK
	}
}

// Config holds pipeline behavior settings.
type Config struct {
	// MarkAfterDispatch selects when a message id is recorded as processed.
	// False (the default) marks before dispatch: at-most-once dispatch, but
	// a crash between marking and replying permanently loses that reply.
	// True marks only after a successful reply: at-least-once dispatch, and
	// a crash can produce a duplicate reply on redelivery.
	MarkAfterDispatch bool

	// SummaryTimeout bounds the summarizer call.
	SummaryTimeout time.Duration

	// ReplyTimeout bounds the reply post.
	ReplyTimeout time.Duration
}

// Pipeline wires the idempotency cache and the external collaborators.
type Pipeline struct {
	cache      *dedup.Cache
	fetcher    ContentFetcher
	summarizer Summarizer
	replier    messaging.Replier
	cfg        Config
}

// New creates a pipeline. Zero timeouts in cfg get defaults.
func New(cache *dedup.Cache, fetcher ContentFetcher, summarizer Summarizer, replier messaging.Replier, cfg Config) *Pipeline {
	if cfg.SummaryTimeout <= 0 {
		cfg.SummaryTimeout = DefaultSummaryTimeout
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	return &Pipeline{
		cache:      cache,
		fetcher:    fetcher,
		summarizer: summarizer,
		replier:    replier,
		cfg:        cfg,
	}
}

// Process runs one event through the full pipeline and returns its terminal
// outcome. Errors from collaborators never escape; they become substitute
// reply text or log entries.
func (p *Pipeline) Process(ctx context.Context, env models.Envelope) Outcome {
	msg, err := events.Normalize(env.Event)
	if err != nil {
		if !errors.Is(err, events.ErrSkip) {
			slog.Error("Pipeline.Process: normalization failed", "error", err)
		}
		return OutcomeSkipped
	}

	if p.cfg.MarkAfterDispatch {
		// At-least-once: check only, record after a successful reply.
		if p.cache.Contains(msg.ID) {
			slog.Debug("Pipeline.Process: message already processed", "id", msg.ID)
			return OutcomeAlreadyProcessed
		}
	} else {
		seen, err := p.cache.CheckAndRecord(msg.ID)
		if err != nil {
			// The in-memory mark is in place; only durability is degraded.
			slog.Error("Pipeline.Process: failed to persist idempotency mark", "error", err, "id", msg.ID)
		}
		if seen {
			slog.Debug("Pipeline.Process: message already processed", "id", msg.ID)
			return OutcomeAlreadyProcessed
		}
	}

	url, ok := extract.Extract(msg)
	if !ok {
		slog.Debug("Pipeline.Process: no url in message", "id", msg.ID)
		return OutcomeNoURL
	}
	slog.Info("Pipeline.Process: dispatching", "id", msg.ID, "url", url, "channel", msg.Channel)

	text := p.summarizeURL(ctx, url)

	replyCtx, cancel := context.WithTimeout(ctx, p.cfg.ReplyTimeout)
	defer cancel()
	threadTS := msg.ReplyThreadTS()
	if _, err := p.replier.PostReply(replyCtx, msg.Channel, msg.User, text, threadTS); err != nil {
		// Not retried; the idempotency mark is unaffected.
		slog.Error("Pipeline.Process: failed to post reply", "error", err, "id", msg.ID, "channel", msg.Channel, "thread_ts", threadTS)
		return OutcomeDone
	}

	if p.cfg.MarkAfterDispatch {
		if err := p.cache.Record(msg.ID); err != nil {
			slog.Error("Pipeline.Process: failed to persist idempotency mark", "error", err, "id", msg.ID)
		}
	}
	slog.Info("Pipeline.Process: done", "id", msg.ID, "thread_ts", threadTS)
	return OutcomeDone
}

// summarizeURL fetches the page and summarizes it, converting every failure
// into user-facing reply text.
func (p *Pipeline) summarizeURL(ctx context.Context, url string) string {
	content, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		var statusErr *fetch.StatusError
		switch {
		case errors.Is(err, fetch.ErrBlockedHost):
			slog.Warn("Pipeline.summarizeURL: blocked host", "url", url)
			return fmt.Sprintf("This site doesn't allow automated access, so I couldn't read the page. You'll have to open %s yourself.", url)
		case errors.As(err, &statusErr):
			slog.Warn("Pipeline.summarizeURL: fetch returned non-2xx", "url", url, "status", statusErr.StatusCode)
			return fmt.Sprintf("Unable to access the webpage. Status code: %d", statusErr.StatusCode)
		default:
			slog.Error("Pipeline.summarizeURL: fetch failed", "error", err, "url", url)
			return fmt.Sprintf("I encountered an error when trying to access or process the content: %v", err)
		}
	}

	sumCtx, cancel := context.WithTimeout(ctx, p.cfg.SummaryTimeout)
	defer cancel()
	summary, err := p.summarizer.Summarize(sumCtx, content)
	if err != nil {
		slog.Error("Pipeline.summarizeURL: summarization failed", "error", err, "url", url)
		return fmt.Sprintf("I encountered an error when trying to access or process the content: %v", err)
	}
	return "Here's the summary of the linked paper:\n" + summary
}
