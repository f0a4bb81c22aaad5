// Package config reads bookscout settings from config.yaml, .env and
// BOOKSCOUT_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// BOOKSCOUT_SEARCH_LIMIT for search.limit.
const EnvPrefix = "BOOKSCOUT"

const (
	defaultBaseURL        = "https://openlibrary.org"
	defaultCoversURL      = "https://covers.openlibrary.org"
	defaultUserAgent      = "bookscout/1.0 (+https://github.com/lepinkainen/bookscout)"
	defaultTimeout        = 10 * time.Second
	defaultRateLimit      = 3.0
	defaultLimit          = 10
	defaultQuietPeriod    = 300 * time.Millisecond
	defaultMinQueryLength = 2
	defaultLibraryDriver  = "sqlite"
	defaultLibraryDSN     = "./library.db"
)

// Config is the resolved application configuration.
type Config struct {
	OpenLibrary OpenLibraryConfig
	Search      SearchConfig
	Library     LibraryConfig
	LogLevel    slog.Level
}

// OpenLibraryConfig controls the catalog client.
type OpenLibraryConfig struct {
	BaseURL   string
	CoversURL string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
}

// SearchConfig controls interactive search.
type SearchConfig struct {
	Limit          int
	QuietPeriod    time.Duration
	MinQueryLength int
}

// LibraryConfig selects the reading-library store.
type LibraryConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault("openlibrary.baseurl", defaultBaseURL)
	viper.SetDefault("openlibrary.coversurl", defaultCoversURL)
	viper.SetDefault("openlibrary.useragent", defaultUserAgent)
	viper.SetDefault("openlibrary.timeout", defaultTimeout.String())
	viper.SetDefault("openlibrary.ratelimit", defaultRateLimit)

	viper.SetDefault("search.limit", defaultLimit)
	viper.SetDefault("search.quietperiod", defaultQuietPeriod.String())
	viper.SetDefault("search.minquerylength", defaultMinQueryLength)

	viper.SetDefault("library.driver", defaultLibraryDriver)
	viper.SetDefault("library.dsn", defaultLibraryDSN)

	viper.SetDefault("log.level", "info")
}

// LoadDotEnv loads environment variables from the given files (".env" when
// none are given). Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

// ReadConfigFile wires environment overrides and reads config.yaml from the
// given directories. A missing config file is fine; defaults apply.
func ReadConfigFile(paths ...string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		viper.AddConfigPath(p)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

// Load resolves the current viper state into a Config. Unparseable values
// fall back to their defaults with a warning.
func Load() Config {
	cfg := Config{
		OpenLibrary: OpenLibraryConfig{
			BaseURL:   stringOr("openlibrary.baseurl", defaultBaseURL),
			CoversURL: stringOr("openlibrary.coversurl", defaultCoversURL),
			UserAgent: stringOr("openlibrary.useragent", defaultUserAgent),
			Timeout:   durationOr("openlibrary.timeout", defaultTimeout),
			RateLimit: viper.GetFloat64("openlibrary.ratelimit"),
		},
		Search: SearchConfig{
			Limit:          positiveIntOr("search.limit", defaultLimit),
			QuietPeriod:    durationOr("search.quietperiod", defaultQuietPeriod),
			MinQueryLength: positiveIntOr("search.minquerylength", defaultMinQueryLength),
		},
		Library: LibraryConfig{
			Driver: strings.ToLower(stringOr("library.driver", defaultLibraryDriver)),
			DSN:    stringOr("library.dsn", defaultLibraryDSN),
		},
		LogLevel: slog.LevelInfo,
	}

	if cfg.OpenLibrary.RateLimit < 0 {
		slog.Warn("Negative rate limit, disabling pacing", "ratelimit", cfg.OpenLibrary.RateLimit)
		cfg.OpenLibrary.RateLimit = 0
	}

	if level := viper.GetString("log.level"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			slog.Warn("Invalid log level, using info", "level", level)
			cfg.LogLevel = slog.LevelInfo
		}
	}

	return cfg
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func positiveIntOr(key string, fallback int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return fallback
}
