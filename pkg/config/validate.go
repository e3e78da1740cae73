package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"content-curator/pkg/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.New("http.timeout_seconds must be positive")
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLanguage(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case logging.FormatAuto, logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("logging.format must be one of auto, console, json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Backend {
	case BackendSQLite:
		if c.Catalog.SQLitePath == "" {
			return errors.New("catalog.sqlite_path must be set")
		}
	case BackendPostgres:
		if c.Catalog.PostgresDSN == "" {
			return errors.New("catalog.postgres_dsn must be set for the postgres backend")
		}
	case BackendSupabase:
		if c.Catalog.SupabaseURL == "" || c.Catalog.SupabaseKey == "" {
			return errors.New("catalog.supabase_url and catalog.supabase_key must be set for the supabase backend")
		}
		if c.Catalog.SupabasePassword == "" && c.Catalog.PostgresDSN == "" {
			return errors.New("catalog.supabase_password or catalog.postgres_dsn must be set for the supabase backend")
		}
	case BackendMongo:
		if c.Catalog.MongoURI == "" {
			return errors.New("catalog.mongo_uri must be set for the mongo backend")
		}
	default:
		return fmt.Errorf("catalog.backend must be one of sqlite, postgres, supabase, mongo; got %q", c.Catalog.Backend)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	for key, value := range map[string]string{
		"youtube.oembed_url": c.YouTube.OEmbedURL,
		"youtube.watch_base": c.YouTube.WatchBase,
		"youtube.embed_base": c.YouTube.EmbedBase,
	} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL; got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateLanguage() error {
	if _, err := language.Parse(c.Language.Code); err != nil {
		return fmt.Errorf("language.code %q: %w", c.Language.Code, err)
	}
	for _, tag := range c.Language.TranscriptLanguages {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("language.transcript_languages entry %q: %w", tag, err)
		}
		if !strings.EqualFold(baseOf(tag), baseOf(c.Language.Code)) {
			return fmt.Errorf("language.transcript_languages entry %q does not match language.code %q", tag, c.Language.Code)
		}
	}
	return nil
}

func baseOf(tag string) string {
	base, _ := language.Make(tag).Base()
	return base.String()
}
