package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"content-curator/pkg/httpclient"
)

const maxListingBytes = 5 * 1024 * 1024

// listingSelectors match links in the title position of typical article
// listings.
var listingSelectors = []string{
	"a.entry-title",
	"a.post-title",
	"a.article-link",
	"a.article-title",
	"h2 a", "h3 a",
	".entry-title a",
	".post-title a",
	".article-title a",
}

var nonArticlePaths = []string{
	"/tag/", "/tags/", "/category/", "/categorie/", "/author/", "/autor/",
	"/archive/", "/page/", "/search", "/cautare", "/feed", "/rss", "/atom",
	"/login", "/register", "/about", "/despre", "/contact",
	"/privacy", "/confidentialitate", "/terms", "/cookie",
}

// PageSource reads article links from an HTML listing page such as a blog
// index or a news category. It is the last resort when a location is
// neither a feed nor a sitemap.
type PageSource struct {
	client *httpclient.HTTPClient
}

func NewPageSource(client *httpclient.HTTPClient) *PageSource {
	return &PageSource{client: client}
}

func (s *PageSource) Name() string { return "page" }

func (s *PageSource) Fetch(ctx context.Context, pageURL string) ([]Entry, error) {
	resp, err := s.client.Fetch(ctx, pageURL, maxListingBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}
	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	entries := listingLinks(doc, base)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no article links found on page")
	}
	return entries, nil
}

// listingLinks tries progressively looser selections: links inside <article>,
// then inside <main>, then title-position links, then any body link outside
// navigation that does not look like an index page.
func listingLinks(doc *goquery.Document, base *url.URL) []Entry {
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(href); err == nil {
			base = b
		}
	}

	var entries []Entry
	seen := make(map[string]bool)
	collect := func(sel *goquery.Selection, filter bool) {
		sel.Each(func(_ int, link *goquery.Selection) {
			entry, ok := linkEntry(link, base)
			if !ok || seen[entry.URL] {
				return
			}
			if filter && !looksLikeArticle(entry.URL) {
				return
			}
			seen[entry.URL] = true
			entries = append(entries, entry)
		})
	}

	collect(doc.Find("article a"), false)
	if len(entries) == 0 {
		collect(doc.Find("main a"), false)
	}
	for _, selector := range listingSelectors {
		collect(doc.Find(selector), false)
	}
	if len(entries) == 0 {
		collect(doc.Find("body a").Not("nav a, header a, footer a, .nav a, .header a, .footer a, .menu a, .sidebar a"), true)
	}
	return entries
}

func linkEntry(link *goquery.Selection, base *url.URL) (Entry, bool) {
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" || strings.HasPrefix(href, "#") {
		return Entry{}, false
	}
	resolved, err := base.Parse(href)
	if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
		return Entry{}, false
	}
	resolved.Fragment = ""

	title := strings.Join(strings.Fields(link.Text()), " ")
	if title == "" {
		title = strings.TrimSpace(link.AttrOr("title", ""))
	}
	return Entry{URL: resolved.String(), Title: title}, true
}

func looksLikeArticle(href string) bool {
	lower := strings.ToLower(href)
	for _, pattern := range nonArticlePaths {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}
