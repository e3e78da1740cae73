package curator

import (
	"go.uber.org/zap"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/content"
	"content-curator/pkg/video"
)

// NewVideoResolver builds the resolver described by cfg.
func NewVideoResolver(cfg *config.Config, logger *zap.Logger) *video.Resolver {
	return video.NewResolver(video.Config{
		OEmbedURL: cfg.YouTube.OEmbedURL,
		WatchBase: cfg.YouTube.WatchBase,
		EmbedBase: cfg.YouTube.EmbedBase,
		Languages: cfg.Language.TranscriptLanguages,
		Timeout:   cfg.HTTPTimeout(),
		UserAgent: cfg.HTTP.UserAgent,
	}, logger)
}

// FromConfig wires a Curator with the production resolver, extractor and
// artifact store against an already opened catalog.
func FromConfig(cfg *config.Config, store catalog.Store, logger *zap.Logger, opts ...Option) *Curator {
	extractor := content.NewExtractor(content.Config{
		Language:  cfg.Language.Code,
		Timeout:   cfg.HTTPTimeout(),
		UserAgent: cfg.HTTP.UserAgent,
	}, logger)
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(store, NewVideoResolver(cfg, logger), extractor, content.NewArtifactStore(cfg.Paths.ArtifactDir), opts...)
}
