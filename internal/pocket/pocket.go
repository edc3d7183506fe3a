// Package pocket maintains the user's collection of captured words and
// phrases. Items are deduplicated by a folded key so "Word" tapped twice
// bumps a counter instead of creating a sibling entry.
package pocket

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/text/width"
)

// SendURLPrefix is the vocabulary-app hand-off endpoint; the captured text
// travels as a query parameter.
const SendURLPrefix = "https://masato-nasu.github.io/TANGO-CHO/?word="

// Kind distinguishes single-word captures from multi-word phrases.
type Kind string

const (
	KindWord   Kind = "word"
	KindPhrase Kind = "phrase"
)

// Item is one captured entry. Times serialize as epoch milliseconds to stay
// compatible with the persisted store blob.
type Item struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Text       string    `json:"text"`
	Kind       Kind      `json:"kind"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"-"`
	LastAt     time.Time `json:"-"`
	SentCount  int       `json:"sentCount"`
	LastSentAt time.Time `json:"-"`
}

type itemJSON struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	Text       string `json:"text"`
	Kind       Kind   `json:"kind"`
	Count      int    `json:"count"`
	CreatedAt  int64  `json:"createdAt"`
	LastAt     int64  `json:"lastAt"`
	SentCount  int    `json:"sentCount"`
	LastSentAt int64  `json:"lastSentAt"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID: it.ID, Key: it.Key, Text: it.Text, Kind: it.Kind, Count: it.Count,
		CreatedAt: it.CreatedAt.UnixMilli(), LastAt: it.LastAt.UnixMilli(),
		SentCount: it.SentCount, LastSentAt: it.LastSentAt.UnixMilli(),
	})
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var v itemJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	it.ID, it.Key, it.Text, it.Kind, it.Count = v.ID, v.Key, v.Text, v.Kind, v.Count
	it.CreatedAt = time.UnixMilli(v.CreatedAt)
	it.LastAt = time.UnixMilli(v.LastAt)
	it.SentCount = v.SentCount
	it.LastSentAt = time.UnixMilli(v.LastSentAt)
	return nil
}

// Sent reports whether the item has been handed to the vocabulary app.
func (it Item) Sent() bool {
	return it.SentCount > 0
}

var (
	spaceRuns = regexp.MustCompile(`\s+`)
	edgePunct = regexp.MustCompile(`^[\s"'“”‘’()\[\]{}<>.,;:!?、。]+|[\s"'“”‘’()\[\]{}<>.,;:!?、。]+$`)

	quoteFolder = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// NormalizeSpaces folds ideographic spaces to ASCII and collapses
// whitespace runs to single spaces.
func NormalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, "　", " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

// StripEdgePunct removes surrounding quotes, brackets, and punctuation that
// ride along with a tap or selection.
func StripEdgePunct(s string) string {
	return strings.TrimSpace(edgePunct.ReplaceAllString(NormalizeSpaces(s), ""))
}

// Key builds the dedup key for a capture: kind-scoped, whitespace-folded,
// quote-folded, width-narrowed, lowercased.
func Key(text string, kind Kind) string {
	base := quoteFolder.Replace(NormalizeSpaces(text))
	base = width.Narrow.String(base)
	return string(kind) + "::" + strings.ToLower(base)
}

// Add records a capture. Raw text is cleaned first; an empty result is a
// no-op. An existing item with the same key gets its count bumped, otherwise
// a new item is prepended. kind may be empty, in which case it is inferred
// from embedded whitespace. Returns the updated slice, the touched item, and
// whether a new item was created.
func Add(items []Item, raw string, kind Kind) ([]Item, Item, bool) {
	text := StripEdgePunct(raw)
	if text == "" {
		return items, Item{}, false
	}
	if kind == "" {
		if strings.ContainsAny(text, " \t") {
			kind = KindPhrase
		} else {
			kind = KindWord
		}
	}
	key := Key(text, kind)
	now := time.Now()

	for i := range items {
		if items[i].Key == key {
			items[i].Count++
			items[i].LastAt = now
			return items, items[i], false
		}
	}

	it := Item{
		ID:        newID(now),
		Key:       key,
		Text:      text,
		Kind:      kind,
		Count:     1,
		CreatedAt: now,
		LastAt:    now,
	}
	return append([]Item{it}, items...), it, true
}

// MarkSent bumps the send counters for the item with the given ID.
func MarkSent(items []Item, id string) ([]Item, bool) {
	for i := range items {
		if items[i].ID == id {
			items[i].SentCount++
			items[i].LastSentAt = time.Now()
			return items, true
		}
	}
	return items, false
}

// Delete returns the items without the given ID. The input slice is left
// intact.
func Delete(items []Item, id string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Unsent returns the items not yet handed to the vocabulary app.
func Unsent(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if !it.Sent() {
			out = append(out, it)
		}
	}
	return out
}

// ClearSent returns the items that have never been sent. The input slice is
// left intact.
func ClearSent(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.Sent() {
			out = append(out, it)
		}
	}
	return out
}

// SendURL builds the vocabulary-app hand-off URL for a capture.
func SendURL(text string) string {
	return SendURLPrefix + url.QueryEscape(text)
}

func newID(now time.Time) string {
	if id, err := uuid.NewV4(); err == nil {
		return id.String()
	}
	return now.Format("20060102150405.000000000")
}
