package article

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSourceJSONRoundTrip(t *testing.T) {
	for _, s := range []Source{SourceDirect, SourceJina} {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}
		var got Source
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if got != s {
			t.Fatalf("round trip changed %v to %v", s, got)
		}
	}
}

func TestSourceStrings(t *testing.T) {
	if SourceDirect.String() != "direct" || SourceJina.String() != "jina" {
		t.Fatalf("unexpected source strings: %s, %s", SourceDirect, SourceJina)
	}
}

func TestSourceRejectsUnknown(t *testing.T) {
	var s Source
	if err := json.Unmarshal([]byte(`"rss"`), &s); err == nil {
		t.Fatalf("expected error for unknown source")
	}
	if _, err := json.Marshal(Source(42)); err == nil {
		t.Fatalf("expected error marshaling unknown source")
	}
}

func TestArticleJSONUsesEpochMillis(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	a := Article{URL: "https://ex.com/a", Title: "T", Text: "body", Source: SourceJina, FetchedAt: at}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["fetchedAt"] != float64(1700000000123) {
		t.Fatalf("fetchedAt not epoch millis: %v", raw["fetchedAt"])
	}
	if raw["source"] != "jina" {
		t.Fatalf("source not tagged: %v", raw["source"])
	}

	var back Article
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.FetchedAt.Equal(at) || back.URL != a.URL || back.Source != a.Source {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestUsableGate(t *testing.T) {
	a := Article{Text: "0123456789"}
	if !a.Usable(10) {
		t.Fatalf("exactly the minimum must be usable")
	}
	if a.Usable(11) {
		t.Fatalf("below the minimum must be unusable")
	}

	// Ten runes, thirty bytes: the gate counts runes.
	j := Article{Text: strings.Repeat("読", 10)}
	if !j.Usable(10) {
		t.Fatalf("ten runes must satisfy a minimum of ten")
	}
	if j.Usable(11) {
		t.Fatalf("byte count must not inflate the measured length")
	}
}
