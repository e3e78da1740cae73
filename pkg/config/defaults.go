package config

const (
	defaultDataDir         = "~/.local/share/content-curator"
	defaultSQLiteFile      = "chaoslimba_content.db"
	defaultArtifactSubdir  = "content/text"
	defaultBackend         = BackendSQLite
	defaultMongoDatabase   = "curator"
	defaultMongoCollection = "content"
	defaultHTTPTimeout     = 10
	defaultOEmbedURL       = "https://www.youtube.com/oembed"
	defaultWatchBase       = "https://www.youtube.com/watch"
	defaultEmbedBase       = "https://www.youtube.com/embed"
	defaultLanguageCode    = "ro"
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Catalog: Catalog{
			Backend:         defaultBackend,
			MongoDatabase:   defaultMongoDatabase,
			MongoCollection: defaultMongoCollection,
		},
		HTTP: HTTP{
			TimeoutSeconds: defaultHTTPTimeout,
		},
		YouTube: YouTube{
			OEmbedURL: defaultOEmbedURL,
			WatchBase: defaultWatchBase,
			EmbedBase: defaultEmbedBase,
		},
		Language: Language{
			Code:                defaultLanguageCode,
			TranscriptLanguages: []string{"ro", "ro-RO", "ro-MD"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
