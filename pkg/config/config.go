package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
)

// Paths contains on-disk locations.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	ArtifactDir string `toml:"artifact_dir"`
}

// Catalog selects and configures the catalog backend.
type Catalog struct {
	Backend          string `toml:"backend"`
	SQLitePath       string `toml:"sqlite_path"`
	PostgresDSN      string `toml:"postgres_dsn"`
	MongoURI         string `toml:"mongo_uri"`
	MongoDatabase    string `toml:"mongo_database"`
	MongoCollection  string `toml:"mongo_collection"`
	SupabaseURL      string `toml:"supabase_url"`
	SupabaseKey      string `toml:"supabase_key"`
	SupabasePassword string `toml:"supabase_password"`
}

// HTTP contains outbound request settings.
type HTTP struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// YouTube contains the platform endpoints used by the video resolver.
type YouTube struct {
	OEmbedURL string `toml:"oembed_url"`
	WatchBase string `toml:"watch_base"`
	EmbedBase string `toml:"embed_base"`
}

// Language configures the target learning language.
type Language struct {
	Code                string   `toml:"code"`
	TranscriptLanguages []string `toml:"transcript_languages"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the curator.
//
// Sections:
//   - Paths: data directory and article artifact directory
//   - Catalog: backend selection and connection settings
//   - HTTP: outbound timeout and user agent
//   - YouTube: oEmbed, watch and embed endpoints
//   - Language: target language and transcript priority list
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Catalog  Catalog  `toml:"catalog"`
	HTTP     HTTP     `toml:"http"`
	YouTube  YouTube  `toml:"youtube"`
	Language Language `toml:"language"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/content-curator/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults and environment overrides apply. The returned config
// has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env, ok := os.LookupEnv("CURATOR_CONFIG"); ok {
			path = strings.TrimSpace(env)
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnv overlays environment variables. DATABASE_URL matches the variable
// the web platform reads for its Postgres connection.
func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"CURATOR_DATA_DIR", &c.Paths.DataDir},
		{"CURATOR_ARTIFACT_DIR", &c.Paths.ArtifactDir},
		{"CURATOR_DB_BACKEND", &c.Catalog.Backend},
		{"CURATOR_SQLITE_PATH", &c.Catalog.SQLitePath},
		{"DATABASE_URL", &c.Catalog.PostgresDSN},
		{"CURATOR_POSTGRES_DSN", &c.Catalog.PostgresDSN},
		{"CURATOR_MONGO_URI", &c.Catalog.MongoURI},
		{"SUPABASE_URL", &c.Catalog.SupabaseURL},
		{"SUPABASE_KEY", &c.Catalog.SupabaseKey},
		{"SUPABASE_DB_PASSWORD", &c.Catalog.SupabasePassword},
		{"CURATOR_LOG_LEVEL", &c.Logging.Level},
		{"CURATOR_LOG_FORMAT", &c.Logging.Format},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

// EnsureDirectories creates the data and artifact directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ArtifactDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
