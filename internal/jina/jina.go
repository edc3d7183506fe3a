// Package jina delegates extraction to the Jina reader service, which
// fetches a page and reformats it as plain text. It is the fallback strategy
// in the extraction race: slower than a direct fetch but far more tolerant
// of sites that block or mangle cross-origin reads.
package jina

import (
	"context"
	"regexp"
	"strings"

	"github.com/masato-nasu/pocketbridge/internal/extract"
	"github.com/masato-nasu/pocketbridge/internal/fetch"
)

// DefaultPrefix is the reader-service endpoint. The target URL is appended
// verbatim, not re-encoded.
const DefaultPrefix = "https://r.jina.ai/"

// cutMarkers are boilerplate section headers the reader service appends
// after the article body. Output is truncated at the earliest occurrence.
var cutMarkers = []string{
	"\nButtons & Links\n",
	"\nImages\n",
	"\nリンク\n",
	"\nButtons and Links\n",
}

var (
	headingRe   = regexp.MustCompile(`^#{1,3}\s+(.{3,120})$`)
	titleLineRe = regexp.MustCompile(`(?i)^Title:\s*(.{3,120})$`)
)

// Client wraps the bounded fetcher with the reader-service URL rewrite.
type Client struct {
	Fetcher *fetch.Client
	Prefix  string
}

func (c *Client) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return DefaultPrefix
}

// Extract fetches the reader-service rendition of url and cleans it.
// Fetch errors propagate unchanged.
func (c *Client) Extract(ctx context.Context, url string) (extract.Document, error) {
	raw, err := c.Fetcher.Get(ctx, c.prefix()+url)
	if err != nil {
		return extract.Document{}, err
	}
	text := CleanOutput(string(raw))
	return extract.Document{Title: TitleFromText(text), Text: text}, nil
}

// CleanOutput normalizes line endings and drops known trailing boilerplate
// sections, keeping only the text before the earliest marker.
func CleanOutput(text string) string {
	t := strings.ReplaceAll(text, "\r\n", "\n")
	cutAt := -1
	for _, m := range cutMarkers {
		if i := strings.Index(t, m); i != -1 && (cutAt == -1 || i < cutAt) {
			cutAt = i
		}
	}
	if cutAt != -1 {
		t = t[:cutAt]
	}
	return strings.TrimSpace(t)
}

// TitleFromText scans the first 10 non-empty lines for a Markdown heading or
// a "Title: ..." line; the first match wins.
func TitleFromText(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, l := range lines {
		if m := headingRe.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for _, l := range lines {
		if m := titleLineRe.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
