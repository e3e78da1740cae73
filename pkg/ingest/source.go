package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"content-curator/pkg/httpclient"
)

// Entry is one candidate URL discovered by a Source.
type Entry struct {
	URL   string
	Title string
}

// Source discovers candidate URLs at a location.
type Source interface {
	Name() string
	Fetch(ctx context.Context, location string) ([]Entry, error)
}

// FileSource reads URLs from a local file, one per line. Blank lines and
// lines starting with # are skipped.
type FileSource struct{}

func NewFileSource() *FileSource {
	return &FileSource{}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(_ context.Context, path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimRight(line, ", \t")
		if line == "" {
			continue
		}
		entries = append(entries, Entry{URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list at line %d: %w", lineNum, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no URLs found in %s", path)
	}
	return entries, nil
}

// FeedSource reads item links from an RSS or Atom feed.
type FeedSource struct {
	parser *gofeed.Parser
}

// NewFeedSource fetches feeds through client's transport and timeout.
func NewFeedSource(client *httpclient.HTTPClient) *FeedSource {
	parser := gofeed.NewParser()
	parser.Client = client.HTTP()
	parser.UserAgent = client.UserAgent()
	return &FeedSource{parser: parser}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		entries = append(entries, Entry{URL: link, Title: strings.TrimSpace(item.Title)})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid URLs found in feed items")
	}
	return entries, nil
}

// DefaultSources returns every source in discovery order: local URL list,
// feed, sitemap, then HTML listing page.
func DefaultSources(client *httpclient.HTTPClient, logger *zap.Logger) []Source {
	return []Source{
		NewFileSource(),
		NewFeedSource(client),
		NewSitemapSource(client, logger),
		NewPageSource(client),
	}
}
