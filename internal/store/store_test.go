package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masato-nasu/pocketbridge/internal/article"
	"github.com/masato-nasu/pocketbridge/internal/pocket"
)

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Settings.UseJinaFallback || !s.Settings.WrapWords || s.Settings.OpenMode != "newtab" {
		t.Fatalf("unexpected defaults: %+v", s.Settings)
	}
	if s.Pocket.Filter != "all" {
		t.Fatalf("unexpected pocket filter: %q", s.Pocket.Filter)
	}
}

func TestLoadCorruptFileYieldsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("corrupt store must not fail startup: %v", err)
	}
	if !s.Settings.UseJinaFallback {
		t.Fatalf("expected default settings after corrupt load")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "store.json")

	s := Default()
	s.Settings.UseJinaFallback = false
	items, _, _ := pocket.Add(nil, "serendipity", "")
	s.Pocket.Items = items
	s.AddHistory("https://ex.com/a", "Article A")
	s.Cache["https://ex.com/a"] = article.Article{
		URL: "https://ex.com/a", Title: "Article A", Text: "body",
		Source: article.SourceDirect, FetchedAt: time.UnixMilli(1700000000000),
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.V != Version {
		t.Fatalf("version tag missing: %q", got.V)
	}
	if got.Settings.UseJinaFallback {
		t.Fatalf("settings not persisted")
	}
	if len(got.Pocket.Items) != 1 || got.Pocket.Items[0].Text != "serendipity" {
		t.Fatalf("pocket not persisted: %+v", got.Pocket.Items)
	}
	if len(got.History) != 1 || got.History[0].Title != "Article A" {
		t.Fatalf("history not persisted: %+v", got.History)
	}
	cached, ok := got.Cache["https://ex.com/a"]
	if !ok || cached.Source != article.SourceDirect || !cached.FetchedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("cache not persisted: %+v", cached)
	}
}

func TestAddHistoryDedupesAndCaps(t *testing.T) {
	s := Default()
	for i := 0; i < MaxHistory+5; i++ {
		s.AddHistory(fmt.Sprintf("https://ex.com/%d", i), fmt.Sprintf("t%d", i))
	}
	if len(s.History) != MaxHistory {
		t.Fatalf("expected cap %d, got %d", MaxHistory, len(s.History))
	}

	// Revisiting moves to front without duplicating.
	s.AddHistory("https://ex.com/20", "t20 again")
	if s.History[0].URL != "https://ex.com/20" || s.History[0].Title != "t20 again" {
		t.Fatalf("revisit not moved to front: %+v", s.History[0])
	}
	seen := map[string]int{}
	for _, h := range s.History {
		seen[h.URL]++
	}
	if seen["https://ex.com/20"] != 1 {
		t.Fatalf("revisit duplicated")
	}
}

func TestAddHistoryEmptyTitleFallsBackToURL(t *testing.T) {
	s := Default()
	s.AddHistory("https://ex.com/a", "   ")
	if s.History[0].Title != "https://ex.com/a" {
		t.Fatalf("unexpected title: %q", s.History[0].Title)
	}
}
