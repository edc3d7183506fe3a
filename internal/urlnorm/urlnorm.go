// Package urlnorm recovers a single canonical absolute URL from free-form
// input: a bare URL, a scheme-less domain, or shared text where a title and a
// URL arrive concatenated. All functions are pure.
package urlnorm

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when no well-formed absolute HTTP(S) URL can be
// recovered from the input.
var ErrInvalidURL = errors.New("invalid url")

var (
	schemedRe = regexp.MustCompile(`(?i)https?://[^\s]+`)
	// Scheme-less domain followed by an optional path, e.g. bbc.com/news/123
	// or example.co.uk. Approximation carried over from the original two-pattern
	// heuristic; it does not handle internationalized domains.
	bareRe = regexp.MustCompile(`(?i)(?:^|\s)((?:[a-z0-9-]+\.)+[a-z]{2,}(?:/[\w\-\._~%!$&'()*+,;=:@/?#\[\]]*)?)`)

	looksSchemedRe = regexp.MustCompile(`(?i)^https?://`)
	looksBarePath  = regexp.MustCompile(`(?i)^[a-z0-9.-]+\.[a-z]{2,}/`)
	looksBareHost  = regexp.MustCompile(`(?i)^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// queryCandidates is the share-target parameter priority order. The later
// names are legacy aliases kept for compatibility with older share intents.
var queryCandidates = []string{"url", "text", "title", "u", "link", "href"}

// FirstURL extracts the first URL-looking token from mixed text. Tokens with
// an explicit http(s) scheme win over scheme-less domain-like tokens.
func FirstURL(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if m := schemedRe.FindString(s); m != "" {
		return m
	}
	if m := bareRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// Normalize canonicalizes a URL candidate: trims, defaults the scheme to
// https, and validates that the result parses as an absolute URL with a host.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}
	if !looksSchemedRe.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidURL
	}
	return s, nil
}

// FromMixedText recovers and normalizes the first URL found in mixed text.
func FromMixedText(text string) (string, error) {
	return Normalize(FirstURL(text))
}

// FromQuery scans share-target query parameters in fixed priority order
// (url, text, title, then legacy aliases) and returns the first candidate
// that yields a normalizable URL, along with the winning parameter name.
func FromQuery(values url.Values) (string, string, error) {
	for _, name := range queryCandidates {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		if u, err := FromMixedText(raw); err == nil {
			return u, name, nil
		}
	}
	return "", "", ErrInvalidURL
}

// LooksLikeURL reports whether the input plausibly is a URL on its own,
// without attempting full normalization.
func LooksLikeURL(s string) bool {
	t := strings.TrimSpace(s)
	return looksSchemedRe.MatchString(t) || looksBarePath.MatchString(t) || looksBareHost.MatchString(t)
}
