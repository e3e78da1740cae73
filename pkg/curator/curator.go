// Package curator turns a source URL into a catalog record: it resolves or
// extracts the content, assembles the record and inserts it.
package curator

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"content-curator/pkg/catalog"
	"content-curator/pkg/content"
	"content-curator/pkg/domain"
	"content-curator/pkg/logging"
	"content-curator/pkg/video"
)

// State is a step of a single curation.
type State string

const (
	StateResolving    State = "resolving"
	StateTransforming State = "transforming"
	StatePersisting   State = "persisting"
	StateDone         State = "done"
	StateRejected     State = "rejected"
)

// Status is the result of a curation that did not fail.
type Status string

const (
	StatusInserted  Status = "inserted"
	StatusDuplicate Status = "duplicate"
)

// Request asks for one URL to be curated. Kind may be empty, in which case it
// is inferred from the URL host.
type Request struct {
	URL   string
	Level string
	Tags  []string
	Kind  domain.ContentType
}

// Outcome describes a finished curation.
type Outcome struct {
	Status Status
	// Record is the assembled record. For duplicates it is the record that
	// would have been inserted; the stored one is unchanged.
	Record *domain.ContentRecord
	// ArtifactPath is set for text content.
	ArtifactPath string
}

// VideoResolver is implemented by *video.Resolver.
type VideoResolver interface {
	Resolve(ctx context.Context, ref string) (*video.Metadata, error)
	Transcript(ctx context.Context, id string) (string, bool)
}

// ArticleExtractor is implemented by *content.Extractor.
type ArticleExtractor interface {
	Extract(ctx context.Context, rawURL string) (*content.Article, error)
}

// ArtifactWriter is implemented by *content.ArtifactStore.
type ArtifactWriter interface {
	Save(ctx context.Context, id, body string) (string, error)
}

// Curator runs curations against one catalog.
type Curator struct {
	catalog   catalog.Store
	videos    VideoResolver
	articles  ArticleExtractor
	artifacts ArtifactWriter
	clock     func() time.Time
	logger    *zap.Logger
}

// Option customizes a Curator.
type Option func(*Curator)

// WithClock replaces time.Now as the source of created_at.
func WithClock(clock func() time.Time) Option {
	return func(c *Curator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Curator) {
		c.logger = logging.OrNop(logger)
	}
}

// New wires a Curator.
func New(store catalog.Store, videos VideoResolver, articles ArticleExtractor, artifacts ArtifactWriter, opts ...Option) *Curator {
	c := &Curator{
		catalog:   store,
		videos:    videos,
		articles:  articles,
		artifacts: artifacts,
		clock:     time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Curate runs one request to completion. Failures are returned as
// *domain.Failure; a duplicate is a successful Outcome with StatusDuplicate.
func (c *Curator) Curate(ctx context.Context, req Request) (*Outcome, error) {
	logger := c.logger.With(zap.String("url", req.URL))

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		return c.reject(logger, err)
	}
	kind := req.Kind
	if kind == "" {
		kind = InferKind(req.URL)
	}
	logger = logger.With(zap.String("kind", string(kind)), zap.String("level", string(level)))
	c.transition(logger, StateResolving)

	var (
		rec          *domain.ContentRecord
		artifactPath string
	)
	switch kind {
	case domain.ContentTypeVideoLink:
		rec, err = c.buildVideoRecord(ctx, logger, req, level)
	case domain.ContentTypeText:
		rec, artifactPath, err = c.buildTextRecord(ctx, logger, req, level)
	default:
		err = fmt.Errorf("%w: unknown content kind %q", domain.ErrInvalidRecord, kind)
	}
	if err != nil {
		return c.reject(logger, err)
	}

	c.transition(logger, StatePersisting, zap.String("id", rec.ID))
	result, err := c.catalog.Insert(ctx, rec)
	if err != nil {
		return c.reject(logger, err)
	}

	outcome := &Outcome{Status: StatusInserted, Record: rec, ArtifactPath: artifactPath}
	if result == catalog.AlreadyExists {
		outcome.Status = StatusDuplicate
	}
	logger.Info("curation finished",
		zap.String("state", string(StateDone)),
		zap.String("id", rec.ID),
		zap.String("status", string(outcome.Status)),
		zap.String("title", rec.Title),
	)
	return outcome, nil
}

func (c *Curator) buildVideoRecord(ctx context.Context, logger *zap.Logger, req Request, level domain.Level) (*domain.ContentRecord, error) {
	meta, err := c.videos.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	c.transition(logger, StateTransforming, zap.String("id", meta.ID))
	rec := &domain.ContentRecord{
		ID:        meta.ID,
		Type:      domain.ContentTypeVideoLink,
		Title:     meta.Title,
		SourceURL: meta.WatchURL,
		EmbedURL:  domain.StringPtr(meta.EmbedURL),
		Level:     level,
		Duration:  meta.Duration,
		Tags:      tagsOrEmpty(req.Tags),
		Channel:   domain.StringPtr(meta.Channel),
		CreatedAt: c.clock().UTC(),
	}
	if text, ok := c.videos.Transcript(ctx, meta.ID); ok {
		rec.Transcript = domain.StringPtr(text)
	}
	return rec, nil
}

func (c *Curator) buildTextRecord(ctx context.Context, logger *zap.Logger, req Request, level domain.Level) (*domain.ContentRecord, string, error) {
	article, err := c.articles.Extract(ctx, req.URL)
	if err != nil {
		return nil, "", err
	}

	c.transition(logger, StateTransforming, zap.String("id", article.ID))
	path, err := c.artifacts.Save(ctx, article.ID, article.Body)
	if err != nil {
		return nil, "", fmt.Errorf("save article body: %w", err)
	}

	rec := &domain.ContentRecord{
		ID:         article.ID,
		Type:       domain.ContentTypeText,
		Title:      article.Title,
		SourceURL:  req.URL,
		Level:      level,
		Transcript: domain.StringPtr(article.Body),
		Tags:       tagsOrEmpty(req.Tags),
		CreatedAt:  c.clock().UTC(),
	}
	return rec, path, nil
}

func (c *Curator) transition(logger *zap.Logger, state State, fields ...zap.Field) {
	logger.Debug("curation state", append([]zap.Field{zap.String("state", string(state))}, fields...)...)
}

func (c *Curator) reject(logger *zap.Logger, err error) (*Outcome, error) {
	failure := domain.NewFailure(err)
	logger.Warn("curation rejected",
		zap.String("state", string(StateRejected)),
		zap.String("kind", string(failure.Kind)),
		zap.Error(err),
	)
	return nil, failure
}

// InferKind treats YouTube hosts as video links and everything else as text.
func InferKind(rawURL string) domain.ContentType {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.ContentTypeText
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtube.com", "youtu.be", "youtube-nocookie.com", "music.youtube.com":
		return domain.ContentTypeVideoLink
	}
	return domain.ContentTypeText
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return append([]string(nil), tags...)
}
