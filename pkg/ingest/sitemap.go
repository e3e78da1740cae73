package ingest

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"go.uber.org/zap"

	"content-curator/pkg/httpclient"
	"content-curator/pkg/logging"
)

const (
	maxSitemapBytes = 50 * 1024 * 1024
	// maxSitemapDepth bounds index-of-index recursion.
	maxSitemapDepth = 3
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
}

// SitemapSource reads page URLs from a sitemap or sitemap index.
type SitemapSource struct {
	client *httpclient.HTTPClient
	logger *zap.Logger
}

func NewSitemapSource(client *httpclient.HTTPClient, logger *zap.Logger) *SitemapSource {
	return &SitemapSource{client: client, logger: logging.OrNop(logger)}
}

func (s *SitemapSource) Name() string { return "sitemap" }

func (s *SitemapSource) Fetch(ctx context.Context, sitemapURL string) ([]Entry, error) {
	return s.fetch(ctx, sitemapURL, 0)
}

func (s *SitemapSource) fetch(ctx context.Context, sitemapURL string, depth int) ([]Entry, error) {
	resp, err := s.client.Fetch(ctx, sitemapURL, maxSitemapBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}

	root, err := rootElement(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	switch root {
	case "sitemapindex":
		if depth >= maxSitemapDepth {
			return nil, fmt.Errorf("sitemap index nested deeper than %d", maxSitemapDepth)
		}
		var index sitemapIndex
		if err := xml.Unmarshal(resp.Body, &index); err != nil {
			return nil, fmt.Errorf("decode sitemap index: %w", err)
		}
		var all []Entry
		for _, ref := range index.Sitemaps {
			if ref.Location == "" {
				continue
			}
			entries, err := s.fetch(ctx, ref.Location, depth+1)
			if err != nil {
				s.logger.Warn("skipping child sitemap", zap.String("url", ref.Location), zap.Error(err))
				continue
			}
			all = append(all, entries...)
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("no entries found in any sitemap from index")
		}
		return all, nil

	case "urlset":
		var set urlSet
		if err := xml.Unmarshal(resp.Body, &set); err != nil {
			return nil, fmt.Errorf("decode sitemap: %w", err)
		}
		entries := make([]Entry, 0, len(set.URLs))
		for _, u := range set.URLs {
			if u.Location != "" {
				entries = append(entries, Entry{URL: u.Location})
			}
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("not a sitemap: root element <%s>", root)
	}
}

func rootElement(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
