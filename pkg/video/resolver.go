// Package video resolves video references into catalog metadata through the
// platform's public oEmbed endpoint and watch page. Media is never downloaded.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"content-curator/pkg/domain"
	"content-curator/pkg/httpclient"
	"content-curator/pkg/logging"
)

const (
	DefaultOEmbedURL = "https://www.youtube.com/oembed"
	DefaultWatchBase = "https://www.youtube.com/watch"
	DefaultEmbedBase = "https://www.youtube.com/embed"

	UnknownTitle   = "Unknown Title"
	UnknownChannel = "Unknown Channel"

	maxOEmbedBytes    = 64 * 1024
	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 512 * 1024
)

// DefaultLanguages is the transcript priority list used when none is configured.
var DefaultLanguages = []string{"ro", "ro-RO", "ro-MD"}

// Metadata is everything the catalog records about a video.
type Metadata struct {
	ID           string
	Title        string
	Channel      string
	ThumbnailURL string
	WatchURL     string
	EmbedURL     string
	// Duration is in seconds; nil when the watch page did not reveal it.
	Duration *int
}

// Config configures a Resolver. Zero values fall back to the public endpoints.
type Config struct {
	OEmbedURL string
	WatchBase string
	EmbedBase string
	// Languages is the transcript priority list. Order matters.
	Languages []string
	Timeout   time.Duration
	UserAgent string
}

// Resolver turns video references into Metadata and transcripts.
type Resolver struct {
	api       *httpclient.HTTPClient
	page      *httpclient.HTTPClient
	oembedURL string
	watchBase string
	embedBase string
	languages []string
	logger    *zap.Logger
}

// NewResolver builds a Resolver with its own API and browser HTTP clients.
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	if cfg.OEmbedURL == "" {
		cfg.OEmbedURL = DefaultOEmbedURL
	}
	if cfg.WatchBase == "" {
		cfg.WatchBase = DefaultWatchBase
	}
	if cfg.EmbedBase == "" {
		cfg.EmbedBase = DefaultEmbedBase
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}

	return &Resolver{
		api: httpclient.NewClient(httpclient.APIClient,
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithUserAgent(cfg.UserAgent)),
		page: httpclient.NewClient(httpclient.BrowserClient,
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithUserAgent(cfg.UserAgent),
			httpclient.WithAcceptLanguage(acceptLanguage(cfg.Languages))),
		oembedURL: cfg.OEmbedURL,
		watchBase: strings.TrimRight(cfg.WatchBase, "/"),
		embedBase: strings.TrimRight(cfg.EmbedBase, "/"),
		languages: append([]string(nil), cfg.Languages...),
		logger:    logging.OrNop(logger),
	}
}

// WatchURL is the canonical watch URL for id.
func (r *Resolver) WatchURL(id string) string {
	return r.watchBase + "?v=" + id
}

// EmbedURL is the embeddable player URL for id.
func (r *Resolver) EmbedURL(id string) string {
	return r.embedBase + "/" + id
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Resolve extracts the id from ref and queries the oEmbed endpoint. Duration
// is looked up best effort on the watch page. Failures are ErrInvalidReference
// or ErrMetadataUnavailable; there is no retry.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Metadata, error) {
	id, err := ExtractID(ref)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		ID:       id,
		WatchURL: r.WatchURL(id),
		EmbedURL: r.EmbedURL(id),
	}

	query := url.Values{}
	query.Set("url", meta.WatchURL)
	query.Set("format", "json")
	endpoint := r.oembedURL + "?" + query.Encode()

	resp, err := r.api.Fetch(ctx, endpoint, maxOEmbedBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMetadataUnavailable, id, err)
	}

	var payload oembedResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: decode oembed: %v", domain.ErrMetadataUnavailable, id, err)
	}

	meta.Title = strings.TrimSpace(payload.Title)
	if meta.Title == "" {
		meta.Title = UnknownTitle
	}
	meta.Channel = strings.TrimSpace(payload.AuthorName)
	if meta.Channel == "" {
		meta.Channel = UnknownChannel
	}
	meta.ThumbnailURL = payload.ThumbnailURL

	if secs, err := r.Duration(ctx, id); err != nil {
		r.logger.Debug("video duration unavailable", zap.String("id", id), zap.Error(err))
	} else {
		meta.Duration = &secs
	}

	return meta, nil
}

// Duration reads the video length from the watch page.
func (r *Resolver) Duration(ctx context.Context, id string) (int, error) {
	page, err := r.fetchWatchPage(ctx, id)
	if err != nil {
		return 0, err
	}
	return page.duration()
}

func (r *Resolver) fetchWatchPage(ctx context.Context, id string) (*watchPage, error) {
	resp, err := r.page.Fetch(ctx, r.WatchURL(id), maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	page, err := parseWatchPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	return page, nil
}

func acceptLanguage(languages []string) string {
	if len(languages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(languages)+1)
	for i, lang := range languages {
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		q := 1.0 - 0.1*float64(i)
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", lang, q))
	}
	return strings.Join(parts, ",")
}
