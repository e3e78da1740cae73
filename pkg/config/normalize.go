package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeLanguage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArtifactDir) == "" {
		c.Paths.ArtifactDir = filepath.Join(c.Paths.DataDir, defaultArtifactSubdir)
	}
	if c.Paths.ArtifactDir, err = expandPath(c.Paths.ArtifactDir); err != nil {
		return fmt.Errorf("paths.artifact_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Backend = strings.ToLower(strings.TrimSpace(c.Catalog.Backend))
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = defaultBackend
	}

	var err error
	if strings.TrimSpace(c.Catalog.SQLitePath) == "" {
		c.Catalog.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	}
	if c.Catalog.SQLitePath, err = expandPath(c.Catalog.SQLitePath); err != nil {
		return fmt.Errorf("catalog.sqlite_path: %w", err)
	}

	c.Catalog.PostgresDSN = strings.TrimSpace(c.Catalog.PostgresDSN)
	c.Catalog.MongoURI = strings.TrimSpace(c.Catalog.MongoURI)
	c.Catalog.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.SupabaseURL), "/")
	if strings.TrimSpace(c.Catalog.MongoDatabase) == "" {
		c.Catalog.MongoDatabase = defaultMongoDatabase
	}
	if strings.TrimSpace(c.Catalog.MongoCollection) == "" {
		c.Catalog.MongoCollection = defaultMongoCollection
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.OEmbedURL = strings.TrimSpace(c.YouTube.OEmbedURL)
	if c.YouTube.OEmbedURL == "" {
		c.YouTube.OEmbedURL = defaultOEmbedURL
	}
	c.YouTube.WatchBase = strings.TrimRight(strings.TrimSpace(c.YouTube.WatchBase), "/")
	if c.YouTube.WatchBase == "" {
		c.YouTube.WatchBase = defaultWatchBase
	}
	c.YouTube.EmbedBase = strings.TrimRight(strings.TrimSpace(c.YouTube.EmbedBase), "/")
	if c.YouTube.EmbedBase == "" {
		c.YouTube.EmbedBase = defaultEmbedBase
	}
}

func (c *Config) normalizeLanguage() {
	c.Language.Code = strings.TrimSpace(c.Language.Code)
	if c.Language.Code == "" {
		c.Language.Code = defaultLanguageCode
	}
	langs := make([]string, 0, len(c.Language.TranscriptLanguages))
	for _, lang := range c.Language.TranscriptLanguages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = []string{c.Language.Code}
	}
	c.Language.TranscriptLanguages = langs
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
