package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TRACKSHELF_API_URL", "TRACKSHELF_SEARCH_DEBOUNCE", "TRACKSHELF_REQUEST_TIMEOUT", "TRACKSHELF_CACHE_TTL", "TRACKSHELF_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.SearchDebounce != DefaultSearchDebounce || cfg.CacheTTL != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	data := "TRACKSHELF_API_URL=https://music.example.com/api\nTRACKSHELF_SEARCH_DEBOUNCE=750ms\n"
	if err := os.WriteFile(env, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TRACKSHELF_API_URL", "")
	t.Setenv("TRACKSHELF_SEARCH_DEBOUNCE", "1s")
	// godotenv only fills variables that are unset.
	os.Unsetenv("TRACKSHELF_API_URL")

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "https://music.example.com/api" {
		t.Fatalf("expected .env api url, got %q", cfg.APIURL)
	}
	if cfg.SearchDebounce != time.Second {
		t.Fatalf("expected environment to win, got %s", cfg.SearchDebounce)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("TRACKSHELF_REQUEST_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		APIURL:         DefaultAPIURL,
		SearchDebounce: time.Second,
		RequestTimeout: time.Second,
		LogLevel:       "info",
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.APIURL = "/api" }},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://example.com" }},
		{"zero debounce", func(c *Config) { c.SearchDebounce = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}
}
