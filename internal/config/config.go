// Package config loads trackshelf settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL         = "http://localhost:8000/api"
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config stores the application configuration.
type Config struct {
	APIURL         string
	SearchDebounce time.Duration
	RequestTimeout time.Duration
	CacheTTL       time.Duration // zero keeps entries until a write invalidates them
	UploadDir      string        // where the upload picker starts
	LogFile        string
	LogLevel       string
	Location       string // initial location, e.g. /tracks/my-song
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load reads the configuration. Variables already set in the environment win
// over the .env file; a missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		APIURL:    getEnv("TRACKSHELF_API_URL", DefaultAPIURL),
		UploadDir: getEnv("TRACKSHELF_UPLOAD_DIR", homeDir()),
		LogFile:   getEnv("TRACKSHELF_LOG_FILE", defaultLogFile()),
		LogLevel:  getEnv("TRACKSHELF_LOG_LEVEL", DefaultLogLevel),
	}
	var err error
	if cfg.SearchDebounce, err = getEnvDuration("TRACKSHELF_SEARCH_DEBOUNCE", DefaultSearchDebounce); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("TRACKSHELF_REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvDuration("TRACKSHELF_CACHE_TTL", 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a user can get wrong.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url %q: %w", c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) URL", c.APIURL)
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("search debounce must be positive, got %s", c.SearchDebounce)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "trackshelf", "trackshelf.log")
}
