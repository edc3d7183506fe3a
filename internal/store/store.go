// Package store persists the application state — settings, pocket, history,
// and the article cache — as a single versioned JSON blob, matching the
// schema of the original web app's local storage.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/masato-nasu/pocketbridge/internal/article"
	"github.com/masato-nasu/pocketbridge/internal/pocket"
)

// Version tags the persisted blob with the app version that wrote it.
const Version = "0.1.5"

// MaxHistory caps the reading history length.
const MaxHistory = 30

// Settings are the user toggles that survive restarts.
type Settings struct {
	UseJinaFallback bool   `json:"useJinaFallback"`
	WrapWords       bool   `json:"wrapWords"`
	OpenMode        string `json:"openMode"` // "newtab" | "same"
}

// PocketState holds the captured items and the active list filter.
type PocketState struct {
	Items  []pocket.Item `json:"items"`
	Filter string        `json:"filter"` // all | unsent | sent
}

// HistoryEntry is one visited article.
type HistoryEntry struct {
	URL   string    `json:"url"`
	Title string    `json:"title"`
	At    time.Time `json:"-"`
}

type historyJSON struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	At    int64  `json:"at"`
}

func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyJSON{URL: h.URL, Title: h.Title, At: h.At.UnixMilli()})
}

func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var v historyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	h.URL, h.Title, h.At = v.URL, v.Title, time.UnixMilli(v.At)
	return nil
}

// Store is the full persisted state.
type Store struct {
	V        string                     `json:"v"`
	Settings Settings                   `json:"settings"`
	Pocket   PocketState                `json:"pocket"`
	History  []HistoryEntry             `json:"history"`
	Cache    map[string]article.Article `json:"cache"`
}

// Default returns the state a fresh install starts from.
func Default() *Store {
	return &Store{
		V: Version,
		Settings: Settings{
			UseJinaFallback: true,
			WrapWords:       true,
			OpenMode:        "newtab",
		},
		Pocket:  PocketState{Filter: "all"},
		Cache:   map[string]article.Article{},
		History: nil,
	}
}

// Load reads the blob at path. A missing file yields the default state; a
// corrupt file is logged and replaced by the default state rather than
// failing startup.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	s := Default()
	if err := json.Unmarshal(b, s); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store unreadable, starting fresh")
		return Default(), nil
	}
	if s.Cache == nil {
		s.Cache = map[string]article.Article{}
	}
	return s, nil
}

// Save writes the blob atomically (temp file + rename) with the current
// version tag.
func (s *Store) Save(path string) error {
	s.V = Version
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// AddHistory records a visit: move-to-front dedup by URL, capped at
// MaxHistory. An empty title falls back to the URL.
func (s *Store) AddHistory(url, title string) {
	t := strings.TrimSpace(title)
	if t == "" {
		t = url
	}
	entry := HistoryEntry{URL: url, Title: t, At: time.Now()}
	out := make([]HistoryEntry, 0, len(s.History)+1)
	out = append(out, entry)
	for _, h := range s.History {
		if h.URL != url {
			out = append(out, h)
		}
	}
	if len(out) > MaxHistory {
		out = out[:MaxHistory]
	}
	s.History = out
}

// ClearHistory drops all history entries.
func (s *Store) ClearHistory() {
	s.History = nil
}

// DefaultPath places the store under the user config directory, falling
// back to the working directory when that is unavailable.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pocketbridge.json"
	}
	return filepath.Join(dir, "pocketbridge", "store.json")
}
