package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values written to a fresh config file and used for omitted fields.
const (
	DefaultProvider       = "gemini"
	DefaultFeedURL        = "https://www.reddit.com/r/shopify/.rss"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	DefaultTimeoutSeconds = 30
	DefaultPostsDir       = "_posts"
	DefaultLogLevel       = "info"
)

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[string]string{
	"gemini":    "gemini-2.5-flash",
	"anthropic": "claude-haiku-4-5",
	"openai":    "gpt-4o-mini",
}

// Config holds all application configuration.
type Config struct {
	AI      AIConfig      `toml:"ai"`
	Feed    FeedConfig    `toml:"feed"`
	Publish PublishConfig `toml:"publish"`
	Log     LogConfig     `toml:"log"`
}

// AIConfig holds generation backend settings.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// FeedConfig holds settings for the syndication feed the run reads from.
type FeedConfig struct {
	URL              string `toml:"url"`
	UserAgent        string `toml:"user_agent"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	PlainTextSummary bool   `toml:"plain_text_summary"`
}

// PublishConfig holds settings for where and how posts are written.
type PublishConfig struct {
	PostsDir        string `toml:"posts_dir"`
	UniqueFilenames bool   `toml:"unique_filenames"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

const defaultConfigContent = `[ai]
provider = "gemini"               # "gemini", "anthropic" or "openai"
api_key = ""                      # Leave empty and set GOOGLE_API_KEY (or AI_API_KEY)
model = ""                        # Empty picks the provider's default model

[feed]
url = "https://www.reddit.com/r/shopify/.rss"
timeout_seconds = 30
plain_text_summary = false        # Convert HTML summaries to plain text before prompting

[publish]
posts_dir = "_posts"
unique_filenames = false          # Append -2, -3, ... instead of overwriting same-day posts

[log]
level = "info"                    # "debug", "info", "warn" or "error"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// Writing "timeout_seconds = 0" is an error rather than a silent default.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("feed", "timeout_seconds") && cfg.Feed.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid feed.timeout_seconds %d: must be >= 1", cfg.Feed.TimeoutSeconds)
	}
	if md.IsDefined("feed", "url") && strings.TrimSpace(cfg.Feed.URL) == "" {
		return errors.New("invalid feed.url: must not be empty")
	}
	if md.IsDefined("publish", "posts_dir") && strings.TrimSpace(cfg.Publish.PostsDir) == "" {
		return errors.New("invalid publish.posts_dir: must not be empty")
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = DefaultProvider
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModels[cfg.AI.Provider]
	}
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = DefaultFeedURL
	}
	if cfg.Feed.UserAgent == "" {
		cfg.Feed.UserAgent = DefaultUserAgent
	}
	if cfg.Feed.TimeoutSeconds == 0 {
		cfg.Feed.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Publish.PostsDir == "" {
		cfg.Publish.PostsDir = DefaultPostsDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. GOOGLE_API_KEY, then GEMINI_API_KEY (when provider is "gemini")
//  3. ANTHROPIC_API_KEY (when provider is "anthropic")
//  4. OPENAI_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	switch cfg.AI.Provider {
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("INSIGHTPOST_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("INSIGHTPOST_POSTS_DIR"); v != "" {
		cfg.Publish.PostsDir = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if _, ok := defaultModels[cfg.AI.Provider]; !ok {
		return fmt.Errorf("invalid ai.provider %q: must be \"gemini\", \"anthropic\" or \"openai\"", cfg.AI.Provider)
	}

	if cfg.Feed.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid feed.timeout_seconds %d: must be >= 1", cfg.Feed.TimeoutSeconds)
	}

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	// A missing key is reported, not fatal here: the pipeline refuses to
	// start without one.
	if cfg.AI.APIKey == "" {
		slog.Error("ai.api_key is empty: set it in the config file or via GOOGLE_API_KEY / AI_API_KEY")
	}

	return nil
}

// ParseLogLevel maps a config level name onto a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", level)
	}
}
