// Package app wires the extraction pipeline to the persisted state and
// exposes the operations the CLI and serve mode are built from.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/masato-nasu/pocketbridge/internal/article"
	"github.com/masato-nasu/pocketbridge/internal/cache"
	"github.com/masato-nasu/pocketbridge/internal/fetch"
	"github.com/masato-nasu/pocketbridge/internal/jina"
	"github.com/masato-nasu/pocketbridge/internal/pocket"
	"github.com/masato-nasu/pocketbridge/internal/resolve"
	"github.com/masato-nasu/pocketbridge/internal/store"
	"github.com/masato-nasu/pocketbridge/internal/urlnorm"
)

// App owns the application state explicitly: the persisted store, the
// article cache seeded from it, and the resolver. The pipeline itself stays
// a pure function of (URL, config); persistence happens only at this
// boundary.
type App struct {
	cfg      Config
	resolver *resolve.Resolver
	cache    *cache.Cache

	mu    sync.Mutex
	store *store.Store
}

// New loads the persisted state and builds the pipeline.
func New(cfg Config) (*App, error) {
	st, err := store.Load(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	c := cache.New(cfg.CacheSize)
	c.Restore(st.Cache)

	fetcher := &fetch.Client{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
	}
	a := &App{
		cfg:   cfg,
		cache: c,
		store: st,
		resolver: &resolve.Resolver{
			Fetcher:    fetcher,
			Reader:     &jina.Client{Fetcher: fetcher, Prefix: cfg.JinaPrefix},
			Cache:      c,
			MinTextLen: cfg.MinTextLen,
		},
	}
	return a, nil
}

// Close persists the current state.
func (a *App) Close() error {
	return a.persist()
}

func (a *App) fallbackEnabled() bool {
	return a.cfg.UseJinaFallback && a.store.Settings.UseJinaFallback
}

// Read resolves raw input (a URL or shared mixed text) to an article. On
// success the visit is recorded in history and the state persisted. On total
// failure a still-usable cached entry for the same URL is returned instead —
// the original app keeps the cached article on screen when a refresh fails —
// and only when no such entry exists does the failure surface.
func (a *App) Read(ctx context.Context, raw string) (article.Article, error) {
	u, err := urlnorm.FromMixedText(raw)
	if err != nil {
		return article.Article{}, err
	}

	cached, hasCached := a.cache.Get(u)
	if hasCached {
		log.Debug().Str("url", u).Msg("cache entry available")
	}

	a.mu.Lock()
	useFallback := a.fallbackEnabled()
	a.mu.Unlock()

	art, err := a.resolver.Resolve(ctx, u, useFallback)
	if err != nil {
		if hasCached && cached.Usable(a.cfg.minTextLen()) {
			log.Warn().Err(err).Str("url", u).Msg("resolution failed, serving cached article")
			return cached, nil
		}
		return article.Article{}, err
	}

	a.mu.Lock()
	a.store.AddHistory(art.URL, art.Title)
	a.mu.Unlock()
	if err := a.persist(); err != nil {
		log.Warn().Err(err).Msg("persist failed")
	}
	return art, nil
}

// Cached returns the cached article for raw input without any network work.
func (a *App) Cached(raw string) (article.Article, bool) {
	u, err := urlnorm.FromMixedText(raw)
	if err != nil {
		return article.Article{}, false
	}
	return a.cache.Get(u)
}

// Collect adds a capture to the pocket. Kind may be empty to infer
// word/phrase from the text.
func (a *App) Collect(raw string, kind pocket.Kind) (pocket.Item, bool, error) {
	a.mu.Lock()
	items, it, created := pocket.Add(a.store.Pocket.Items, raw, kind)
	a.store.Pocket.Items = items
	a.mu.Unlock()
	if it.ID == "" {
		return it, false, errors.New("nothing to collect")
	}
	return it, created, a.persist()
}

// Send marks the item sent and returns the vocabulary-app hand-off URL.
func (a *App) Send(id string) (string, error) {
	a.mu.Lock()
	items, ok := pocket.MarkSent(a.store.Pocket.Items, id)
	a.store.Pocket.Items = items
	var text string
	if ok {
		for _, it := range items {
			if it.ID == id {
				text = it.Text
				break
			}
		}
	}
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no pocket item with id %s", id)
	}
	return pocket.SendURL(text), a.persist()
}

// DeleteItem removes a pocket item.
func (a *App) DeleteItem(id string) error {
	a.mu.Lock()
	a.store.Pocket.Items = pocket.Delete(a.store.Pocket.Items, id)
	a.mu.Unlock()
	return a.persist()
}

// ClearSent drops every sent item and reports how many were removed.
func (a *App) ClearSent() (int, error) {
	a.mu.Lock()
	before := len(a.store.Pocket.Items)
	a.store.Pocket.Items = pocket.ClearSent(a.store.Pocket.Items)
	removed := before - len(a.store.Pocket.Items)
	a.mu.Unlock()
	return removed, a.persist()
}

// Items returns a copy of the pocket contents.
func (a *App) Items() []pocket.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]pocket.Item, len(a.store.Pocket.Items))
	copy(out, a.store.Pocket.Items)
	return out
}

// History returns a copy of the reading history, newest first.
func (a *App) History() []store.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]store.HistoryEntry, len(a.store.History))
	copy(out, a.store.History)
	return out
}

// ClearHistory drops the reading history.
func (a *App) ClearHistory() error {
	a.mu.Lock()
	a.store.ClearHistory()
	a.mu.Unlock()
	return a.persist()
}

// persist folds the live cache back into the store and writes the blob.
func (a *App) persist() error {
	a.mu.Lock()
	a.store.Cache = a.cache.Snapshot()
	err := a.store.Save(a.cfg.StorePath)
	a.mu.Unlock()
	return err
}
