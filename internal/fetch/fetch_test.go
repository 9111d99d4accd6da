package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Test Paper</title></head>
<body>
<nav>site navigation that should not matter</nav>
<article>
<h1>A Study of Things</h1>
<p>We present a careful study of things. The study of things has a long history
and our contribution extends it meaningfully with new experiments.</p>
<p>Our results show that things behave in measurable ways across conditions,
and we discuss the implications for the broader field of thing research.</p>
</article>
</body></html>`

func TestFetch_ExtractsArticleContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "LinkBrief") {
			t.Errorf("expected bot user agent, got %q", got)
		}
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	f := NewFetcher()
	content, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "careful study of things") {
		t.Errorf("expected article text in content, got %q", content)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", statusErr.StatusCode)
	}
}

func TestFetch_BlockedHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blocked host must not be fetched")
	}))
	defer srv.Close()

	f := NewFetcher(WithBlockedHosts([]string{"127.0.0.1"}))
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrBlockedHost) {
		t.Fatalf("expected ErrBlockedHost, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewFetcher(WithTimeout(50 * time.Millisecond))
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Errorf("timeout must not be reported as a status error: %v", err)
	}
}

func TestFetch_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet. ", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><article><p>%s</p></article></body></html>", long)
	}))
	defer srv.Close()

	f := NewFetcher()
	content, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content) > MaxContentLength {
		t.Errorf("content not truncated: %d chars", len(content))
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), "://not-a-url"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
