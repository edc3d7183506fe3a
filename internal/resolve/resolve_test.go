package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/masato-nasu/pocketbridge/internal/article"
	"github.com/masato-nasu/pocketbridge/internal/cache"
	"github.com/masato-nasu/pocketbridge/internal/fetch"
	"github.com/masato-nasu/pocketbridge/internal/jina"
)

func htmlPage(title, body string) string {
	return "<html><head><title>" + title + "</title></head><body><p>" + body + "</p></body></html>"
}

func longBody() string {
	return strings.Repeat("readable article text ", 10)
}

func newResolver(fetcher *fetch.Client, readerPrefix string, c *cache.Cache) *Resolver {
	return &Resolver{
		Fetcher: fetcher,
		Reader:  &jina.Client{Fetcher: fetcher, Prefix: readerPrefix},
		Cache:   c,
	}
}

func TestResolve_DirectWinsRace(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(htmlPage("Direct Title", longBody())))
	}))
	defer direct.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Loses the race; returns early once the loser is cancelled.
		select {
		case <-r.Context().Done():
			return
		case <-time.After(3 * time.Second):
		}
		_, _ = w.Write([]byte("# Slow Remote Title\n\n" + longBody()))
	}))
	defer slow.Close()

	c := cache.New(10)
	r := newResolver(&fetch.Client{Timeout: 5 * time.Second}, slow.URL+"/", c)

	art, err := r.Resolve(context.Background(), direct.URL, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Source != article.SourceDirect {
		t.Fatalf("expected direct winner, got %s", art.Source)
	}
	if art.Title != "Direct Title" {
		t.Fatalf("unexpected title: %q", art.Title)
	}
	if art.FetchedAt.IsZero() {
		t.Fatalf("fetchedAt not set")
	}
	if cached, ok := c.Get(direct.URL); !ok || cached.Source != article.SourceDirect {
		t.Fatalf("winner not written to cache")
	}
}

func TestResolve_FallbackWinsWhenDirectFails(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))
	defer direct.Close()

	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# Remote Reader Title\n\n" + longBody()))
	}))
	defer reader.Close()

	r := newResolver(&fetch.Client{Timeout: 5 * time.Second}, reader.URL+"/", nil)

	art, err := r.Resolve(context.Background(), direct.URL, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Source != article.SourceJina {
		t.Fatalf("expected fallback winner, got %s", art.Source)
	}
	if art.Title != "Remote Reader Title" {
		t.Fatalf("unexpected title: %q", art.Title)
	}
}

func TestResolve_AllFailAggregatesCause(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer direct.Close()

	r := newResolver(&fetch.Client{Timeout: 2 * time.Second}, "", nil)

	_, err := r.Resolve(context.Background(), direct.URL, false)
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
	}
	var httpErr *fetch.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 404 {
		t.Fatalf("expected wrapped HTTPError 404, got %v", err)
	}
}

func TestResolve_QualityGateBoundary(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		usable bool
	}{
		{name: "79 ascii", body: strings.Repeat("a", 79), usable: false},
		{name: "80 ascii", body: strings.Repeat("a", 80), usable: true},
		// 30 runes but 90 bytes; a byte-counting gate would wrongly pass it.
		{name: "30 cjk", body: strings.Repeat("読", 30), usable: false},
		{name: "80 cjk", body: strings.Repeat("読", 80), usable: true},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(htmlPage("T", tc.body)))
		}))

		r := newResolver(&fetch.Client{Timeout: 2 * time.Second}, "", nil)
		art, err := r.Resolve(context.Background(), srv.URL, false)
		srv.Close()

		if tc.usable {
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.name, err)
			}
			if got, want := utf8.RuneCountInString(art.Text), utf8.RuneCountInString(tc.body); got != want {
				t.Fatalf("%s: unexpected text length %d, want %d", tc.name, got, want)
			}
		} else {
			if !errors.Is(err, ErrAllSourcesFailed) || !errors.Is(err, ErrNoUsableContent) {
				t.Fatalf("%s: expected gate rejection, got %v", tc.name, err)
			}
		}
	}
}

func TestResolve_HostnameTitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + longBody() + "</p></body></html>"))
	}))
	defer srv.Close()

	r := newResolver(&fetch.Client{Timeout: 2 * time.Second}, "", nil)
	art, err := r.Resolve(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Title != "127.0.0.1" {
		t.Fatalf("expected hostname title, got %q", art.Title)
	}
}

func TestResolve_FallbackDisabledRunsSinglePath(t *testing.T) {
	var readerCalled bool
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readerCalled = true
		_, _ = w.Write([]byte(longBody()))
	}))
	defer reader.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(htmlPage("T", longBody())))
	}))
	defer direct.Close()

	r := newResolver(&fetch.Client{Timeout: 2 * time.Second}, reader.URL+"/", nil)
	if _, err := r.Resolve(context.Background(), direct.URL, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readerCalled {
		t.Fatalf("fallback must not launch when disabled")
	}
}
