// Package content extracts readable article text from web pages and stores
// the bodies as side artifacts.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"content-curator/pkg/domain"
	"content-curator/pkg/httpclient"
	"content-curator/pkg/logging"
)

const (
	// DefaultLanguage is the target language recorded on extracted articles.
	DefaultLanguage = "ro"

	maxArticleBytes = 10 * 1024 * 1024
)

// Article is the result of a successful extraction.
type Article struct {
	// ID is ContentID of the URL as given.
	ID       string
	URL      string
	FinalURL string
	Title    string
	Body     string
	Authors  []string
	// PublishedAt is nil when the page does not state a date.
	PublishedAt *time.Time
	Language    string
}

// Config configures an Extractor.
type Config struct {
	Language  string
	Timeout   time.Duration
	UserAgent string
}

// Extractor fetches article pages with browser headers and extracts their text.
type Extractor struct {
	client   *httpclient.HTTPClient
	language string
	logger   *zap.Logger
}

// NewExtractor builds an Extractor with its own browser HTTP client.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Extractor{
		client: httpclient.NewClient(httpclient.BrowserClient,
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithUserAgent(cfg.UserAgent),
			httpclient.WithAcceptLanguage(cfg.Language+",en;q=0.5")),
		language: cfg.Language,
		logger:   logging.OrNop(logger),
	}
}

// Extract downloads rawURL and returns its article. Every failure wraps
// domain.ErrExtractionFailure.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, extractionFailure(rawURL, "not an absolute http(s) URL")
	}

	resp, err := e.client.Fetch(ctx, rawURL, maxArticleBytes)
	if err != nil {
		return nil, extractionFailure(rawURL, err.Error())
	}
	if !isHTML(resp.ContentType) {
		return nil, extractionFailure(rawURL, fmt.Sprintf("unsupported content type %q", resp.ContentType))
	}

	htmlContent, err := decodeBody(resp.Body, resp.ContentType)
	if err != nil {
		return nil, extractionFailure(rawURL, err.Error())
	}

	if final, err := url.Parse(resp.FinalURL); err == nil {
		pageURL = final
	}
	parsed, err := parseArticle(htmlContent, pageURL)
	if err != nil {
		return nil, extractionFailure(rawURL, err.Error())
	}
	if parsed.Body == "" {
		return nil, extractionFailure(rawURL, "no article text found")
	}

	e.logger.Debug("article extracted",
		zap.String("url", rawURL),
		zap.String("title", parsed.Title),
		zap.Int("chars", len([]rune(parsed.Body))),
	)

	return &Article{
		ID:          ContentID(rawURL),
		URL:         rawURL,
		FinalURL:    resp.FinalURL,
		Title:       parsed.Title,
		Body:        parsed.Body,
		Authors:     parsed.Authors,
		PublishedAt: parsed.PublishedAt,
		Language:    e.language,
	}, nil
}

func extractionFailure(rawURL, reason string) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrExtractionFailure, rawURL, reason)
}

// isHTML accepts HTML and XHTML. A missing content type is treated as HTML.
func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
func decodeBody(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	return string(decoded), nil
}
