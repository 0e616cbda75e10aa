package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.Scrape.BaseURL != "https://www.nanarland.com" {
		t.Errorf("BaseURL = %q", cfg.Scrape.BaseURL)
	}
	if cfg.Scrape.PageTTL != 24*time.Hour {
		t.Errorf("PageTTL = %v; want 24h", cfg.Scrape.PageTTL)
	}
	if cfg.TMDB.Language.String() != "fr-FR" {
		t.Errorf("TMDB language = %q; want fr-FR", cfg.TMDB.Language)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
}

func TestLoad_Normalization(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("SCRAPE_BASE_URL", "https://example.org/")
	t.Setenv("API_BASE_PATH", "api/v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
	if cfg.Scrape.BaseURL != "https://example.org" {
		t.Errorf("BaseURL not trimmed: %q", cfg.Scrape.BaseURL)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q; want /api/v2", cfg.APIBasePath)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"relative base url", "SCRAPE_BASE_URL", "www.nanarland.com"},
		{"bad index path", "SCRAPE_INDEX_PATH", "chroniques.html"},
		{"bad language", "TMDB_LANGUAGE", "not a tag!"},
		{"zero burst", "RATE_BURST", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.val)
			}
		})
	}
}
