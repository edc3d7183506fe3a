package app

import (
	"time"

	"github.com/masato-nasu/pocketbridge/internal/cache"
	"github.com/masato-nasu/pocketbridge/internal/fetch"
	"github.com/masato-nasu/pocketbridge/internal/jina"
	"github.com/masato-nasu/pocketbridge/internal/resolve"
	"github.com/masato-nasu/pocketbridge/internal/store"
)

// Config holds runtime configuration for the application.
type Config struct {
	// StorePath locates the persisted state blob.
	StorePath string

	// Fetching
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string

	// Fallback path
	UseJinaFallback bool
	JinaPrefix      string

	// Extraction
	MinTextLen int
	CacheSize  int

	// Serve mode
	ListenAddr string

	Verbose bool
}

// minTextLen returns the quality gate, defaulting when the field was never
// set on a hand-built Config. Keeps the stale-cache check and the resolver
// agreeing on one threshold.
func (c Config) minTextLen() int {
	if c.MinTextLen > 0 {
		return c.MinTextLen
	}
	return resolve.MinTextLen
}

// DefaultConfig mirrors the original app's built-in behavior.
func DefaultConfig() Config {
	return Config{
		StorePath:       store.DefaultPath(),
		Timeout:         fetch.DefaultTimeout,
		MaxAttempts:     1,
		UserAgent:       "pocketbridge/" + store.Version,
		UseJinaFallback: true,
		JinaPrefix:      jina.DefaultPrefix,
		MinTextLen:      resolve.MinTextLen,
		CacheSize:       cache.DefaultMaxEntries,
		ListenAddr:      ":8787",
	}
}
