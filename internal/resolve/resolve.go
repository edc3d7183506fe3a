// Package resolve coordinates the extraction race: a direct fetch+extract
// path and an optional remote-reader fallback run concurrently, the first
// successful result wins, and a single aggregated failure surfaces only when
// every launched path has failed.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/masato-nasu/pocketbridge/internal/article"
	"github.com/masato-nasu/pocketbridge/internal/cache"
	"github.com/masato-nasu/pocketbridge/internal/extract"
	"github.com/masato-nasu/pocketbridge/internal/fetch"
	"github.com/masato-nasu/pocketbridge/internal/jina"
)

// MinTextLen is the quality gate: extracted text shorter than this is
// treated as unusable.
const MinTextLen = 80

// ErrAllSourcesFailed marks the terminal failure when no launched path
// produced a usable result. Match with errors.Is.
var ErrAllSourcesFailed = errors.New("all sources failed")

// ErrNoUsableContent marks a gate rejection: the winning path produced text
// below the minimum usable length.
var ErrNoUsableContent = errors.New("no usable content")

// AllSourcesFailedError aggregates the per-path causes of a failed
// resolution. errors.As reaches through it to the underlying typed errors.
type AllSourcesFailedError struct {
	Causes []error
}

func (e *AllSourcesFailedError) Error() string {
	if len(e.Causes) == 0 {
		return ErrAllSourcesFailed.Error()
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return ErrAllSourcesFailed.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *AllSourcesFailedError) Is(target error) bool {
	return target == ErrAllSourcesFailed
}

func (e *AllSourcesFailedError) Unwrap() []error {
	return e.Causes
}

// Resolver wires the race participants together. Fetcher drives the direct
// path; Reader, when present and enabled per call, drives the fallback path.
type Resolver struct {
	Fetcher *fetch.Client
	Reader  *jina.Client
	Cache   *cache.Cache
	// MinTextLen overrides the default quality gate when positive.
	MinTextLen int
}

func (r *Resolver) minTextLen() int {
	if r.MinTextLen > 0 {
		return r.MinTextLen
	}
	return MinTextLen
}

type outcome struct {
	doc extract.Document
	src article.Source
	err error
}

// Resolve races the launched paths and returns the first successful result
// that passes the quality gate. A path that fails does not abort its
// siblings; once a winner is accepted the remaining paths are cancelled.
//
// The gate applies to the race winner only: if the first successful path is
// too short, the resolution fails even when a slower path is still pending.
// That preserves the original fail-fast contract; waiting for second-place
// finishers is a deliberate non-feature, tunable here if it ever changes.
func (r *Resolver) Resolve(ctx context.Context, pageURL string, useFallback bool) (article.Article, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, 2)
	paths := 1

	go func() {
		body, err := r.Fetcher.Get(raceCtx, pageURL)
		if err != nil {
			results <- outcome{src: article.SourceDirect, err: err}
			return
		}
		results <- outcome{doc: extract.ReadHTML(string(body), pageURL), src: article.SourceDirect}
	}()

	if useFallback && r.Reader != nil {
		paths = 2
		go func() {
			doc, err := r.Reader.Extract(raceCtx, pageURL)
			results <- outcome{doc: doc, src: article.SourceJina, err: err}
		}()
	}

	var winner *outcome
	var causes []error
	for i := 0; i < paths; i++ {
		o := <-results
		if o.err != nil {
			log.Debug().Err(o.err).Stringer("source", o.src).Str("url", pageURL).Msg("extraction path failed")
			causes = append(causes, fmt.Errorf("%s: %w", o.src, o.err))
			continue
		}
		winner = &o
		break
	}
	if winner == nil {
		return article.Article{}, &AllSourcesFailedError{Causes: causes}
	}
	cancel() // losers would be discarded anyway; stop their requests

	// The gate counts runes, not bytes: CJK text would otherwise pass at a
	// third of the intended length.
	if n := utf8.RuneCountInString(winner.doc.Text); n < r.minTextLen() {
		causes = append(causes, fmt.Errorf("%w: %d chars from %s", ErrNoUsableContent, n, winner.src))
		return article.Article{}, &AllSourcesFailedError{Causes: causes}
	}

	title := winner.doc.Title
	if title == "" {
		if u, err := url.Parse(pageURL); err == nil {
			title = u.Hostname()
		}
	}

	a := article.Article{
		URL:       pageURL,
		Title:     title,
		Text:      winner.doc.Text,
		Source:    winner.src,
		FetchedAt: time.Now(),
	}
	if r.Cache != nil {
		r.Cache.Put(a)
	}
	log.Debug().Stringer("source", a.Source).Str("url", pageURL).Int("chars", utf8.RuneCountInString(a.Text)).Msg("resolved article")
	return a, nil
}
