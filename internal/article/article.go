package article

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Source identifies which extraction strategy produced an article.
type Source int

const (
	// SourceDirect means the page was fetched and extracted locally.
	SourceDirect Source = iota
	// SourceJina means the text came from the remote reader service.
	SourceJina
)

func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceJina:
		return "jina"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

func (s Source) MarshalJSON() ([]byte, error) {
	switch s {
	case SourceDirect, SourceJina:
		return json.Marshal(s.String())
	}
	return nil, fmt.Errorf("unknown article source: %d", int(s))
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "direct":
		*s = SourceDirect
	case "jina":
		*s = SourceJina
	default:
		return fmt.Errorf("unknown article source: %q", v)
	}
	return nil
}

// Article is a resolved extraction result. It is immutable once created; a
// newer resolution for the same URL supersedes it rather than mutating it.
type Article struct {
	URL       string
	Title     string
	Text      string
	Source    Source
	FetchedAt time.Time
}

// Usable reports whether the article body meets the minimum-length gate.
// Length is measured in runes so multibyte text is not over-counted.
func (a Article) Usable(min int) bool {
	return utf8.RuneCountInString(a.Text) >= min
}

// articleJSON matches the persisted store schema; fetchedAt is epoch millis.
type articleJSON struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Source    Source `json:"source"`
	FetchedAt int64  `json:"fetchedAt"`
}

func (a Article) MarshalJSON() ([]byte, error) {
	return json.Marshal(articleJSON{
		URL:       a.URL,
		Title:     a.Title,
		Text:      a.Text,
		Source:    a.Source,
		FetchedAt: a.FetchedAt.UnixMilli(),
	})
}

func (a *Article) UnmarshalJSON(data []byte) error {
	var v articleJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.URL = v.URL
	a.Title = v.Title
	a.Text = v.Text
	a.Source = v.Source
	a.FetchedAt = time.UnixMilli(v.FetchedAt)
	return nil
}
