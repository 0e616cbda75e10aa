// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage paths, scraping behavior, and the
// TMDB client.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// ScrapeConfig defines how pages of the source site are fetched and cached.
type ScrapeConfig struct {
	BaseURL       string        // SCRAPE_BASE_URL, scheme+host of the source site
	IndexPath     string        // SCRAPE_INDEX_PATH, path of the all-chronicles page
	PageTTL       time.Duration // SCRAPE_PAGE_TTL, rendered-page cache lifetime
	Delay         time.Duration // SCRAPE_DELAY, default pause between batch items
	ChromePath    string        // CHROME_PATH, optional browser executable override
	RenderTimeout time.Duration // SCRAPE_RENDER_TIMEOUT, per-page navigation budget
}

// TMDBConfig defines the external movie-metadata client settings.
type TMDBConfig struct {
	Token    string        // TMDB_TOKEN (bearer)
	BaseURL  string        // TMDB_BASE_URL
	TTL      time.Duration // TMDB_CACHE_TTL, details cache lifetime
	Language language.Tag  // TMDB_LANGUAGE (BCP 47, e.g. fr-FR)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Storage
	DBPath    string // SQLite path
	CacheDir  string // Badger directory for the shared KV cache
	PosterDir string // content-addressed poster directory

	// Scraping / metadata
	Scrape ScrapeConfig
	TMDB   TMDBConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS CORSConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath:    getenv("DB_PATH", "nanarbase.db"),
		CacheDir:  getenv("CACHE_DIR", "data/cache"),
		PosterDir: getenv("POSTER_DIR", "data/posters"),

		Scrape: ScrapeConfig{
			BaseURL:       strings.TrimRight(getenv("SCRAPE_BASE_URL", "https://www.nanarland.com"), "/"),
			IndexPath:     getenv("SCRAPE_INDEX_PATH", "/chroniques/toutes-nos-chroniques.html"),
			PageTTL:       getdur("SCRAPE_PAGE_TTL", 24*time.Hour),
			Delay:         getdur("SCRAPE_DELAY", 2*time.Second),
			ChromePath:    getenv("CHROME_PATH", ""),
			RenderTimeout: getdur("SCRAPE_RENDER_TIMEOUT", 45*time.Second),
		},

		TMDB: TMDBConfig{
			Token:   getenv("TMDB_TOKEN", ""),
			BaseURL: strings.TrimRight(getenv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
			TTL:     getdur("TMDB_CACHE_TTL", 7*24*time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	lang, err := language.Parse(getenv("TMDB_LANGUAGE", "fr-FR"))
	if err != nil {
		return cfg, errors.New("TMDB_LANGUAGE must be a valid BCP 47 tag")
	}
	cfg.TMDB.Language = lang

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return cfg, errors.New("CACHE_DIR must not be empty")
	}
	if strings.TrimSpace(cfg.PosterDir) == "" {
		return cfg, errors.New("POSTER_DIR must not be empty")
	}
	if !strings.HasPrefix(cfg.Scrape.BaseURL, "http") {
		return cfg, errors.New("SCRAPE_BASE_URL must be an absolute http(s) URL")
	}
	if !strings.HasPrefix(cfg.Scrape.IndexPath, "/") {
		return cfg, errors.New("SCRAPE_INDEX_PATH must start with '/'")
	}
	if cfg.Scrape.PageTTL <= 0 || cfg.TMDB.TTL <= 0 {
		return cfg, errors.New("cache TTLs must be positive durations")
	}
	if cfg.Scrape.Delay < 0 {
		return cfg, errors.New("SCRAPE_DELAY must be >= 0")
	}
	if cfg.Scrape.RenderTimeout <= 0 {
		return cfg, errors.New("SCRAPE_RENDER_TIMEOUT must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
