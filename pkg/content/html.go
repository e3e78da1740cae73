package content

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// UntitledArticle is recorded when no title source yields text.
const UntitledArticle = "Untitled"

// parsedArticle is what a single HTML document yields.
type parsedArticle struct {
	Title       string
	Body        string
	Authors     []string
	PublishedAt *time.Time
}

// titleSelectors are consulted in order after readability.
var titleSelectors = []struct {
	selector string
	attr     string
}{
	{"title", ""},
	{"h1", ""},
	{`meta[property="og:title"]`, "content"},
	{`meta[name="title"]`, "content"},
}

// publishedLayouts cover the article:published_time values seen in practice.
var publishedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseArticle extracts title, body text, authors and publish date from an HTML document.
func parseArticle(htmlContent string, pageURL *url.URL) (*parsedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	parsed := &parsedArticle{
		Title:   extractTitle(article.Title, doc),
		Body:    normalizeBody(article.TextContent),
		Authors: extractAuthors(article.Byline, doc),
	}
	if article.PublishedTime != nil && !article.PublishedTime.IsZero() {
		t := article.PublishedTime.UTC()
		parsed.PublishedAt = &t
	} else {
		parsed.PublishedAt = metaPublishedTime(doc)
	}
	return parsed, nil
}

func extractTitle(readabilityTitle string, doc *goquery.Document) string {
	if title := strings.TrimSpace(readabilityTitle); title != "" {
		return title
	}
	for _, ts := range titleSelectors {
		sel := doc.Find(ts.selector).First()
		var title string
		if ts.attr == "" {
			title = sel.Text()
		} else {
			title, _ = sel.Attr(ts.attr)
		}
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return UntitledArticle
}

func extractAuthors(byline string, doc *goquery.Document) []string {
	authors := splitAuthors(byline)
	if len(authors) > 0 {
		return authors
	}
	doc.Find(`meta[name="author"], meta[property="article:author"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			authors = append(authors, splitAuthors(content)...)
		}
	})
	return dedupe(authors)
}

func splitAuthors(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "By ")
	s = strings.TrimPrefix(s, "de ")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" && !strings.HasPrefix(f, "http") {
			out = append(out, f)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func metaPublishedTime(doc *goquery.Document) *time.Time {
	raw, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content")
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalizeBody trims every line and collapses runs of blank lines.
func normalizeBody(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
