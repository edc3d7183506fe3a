// Package extract turns raw HTML into readable plain text. It is
// best-effort by contract: malformed or empty input degrades to an empty
// Document rather than an error, leaving the quality gate downstream to
// reject unusably short output.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is the extracted title and linearized body text of a page.
type Document struct {
	Title string
	Text  string
}

// noiseSelector lists structural and non-content elements that never
// contribute article text.
const noiseSelector = "script, style, noscript, iframe, svg, canvas, form, input, button, nav, footer, header, aside, dialog"

var manyNewlines = regexp.MustCompile(`\n{3,}`)

// ReadHTML parses htmlSrc, strips noise elements, picks the main content
// region (article, then main, then body), linearizes it to text, and
// recovers a title. Relative link targets resolve against baseURL.
func ReadHTML(htmlSrc string, baseURL string) Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return Document{}
	}

	title := findTitle(doc)

	doc.Find(noiseSelector).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	base, _ := url.Parse(baseURL)
	flattenLinks(root, base)
	insertBreaks(root)

	text := root.Text()
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return Document{Title: title, Text: text}
}

// findTitle resolves the display title: Open Graph metadata wins over the
// document title element; absent both, the caller falls back to the hostname.
func findTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// flattenLinks replaces each hyperlink with its visible label, or with the
// resolved absolute target when the label is empty.
func flattenLinks(root *goquery.Selection, base *url.URL) {
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		label := strings.TrimSpace(a.Text())
		if label == "" {
			href, _ := a.Attr("href")
			if base != nil {
				if ref, err := url.Parse(href); err == nil {
					label = base.ResolveReference(ref).String()
				}
			}
			if label == "" {
				label = href
			}
		}
		a.ReplaceWithNodes(textNode(label))
	})
}

// insertBreaks converts structural elements into readable whitespace so the
// flat Text() pass keeps paragraph and list boundaries.
func insertBreaks(root *goquery.Selection) {
	root.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(textNode("\n"))
	})
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		p.AppendNodes(textNode("\n\n"))
	})
	root.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.PrependNodes(textNode("• "))
		li.AppendNodes(textNode("\n"))
	})
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
