package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Renderer is the headless rendering capability consumed by the Loader.
// The production implementation lives in internal/browser; tests substitute
// a fake serving canned HTML.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Cache is the key/value capability backing the rendered-page cache.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
}

var (
	pagesRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scrape_pages_rendered_total",
		Help: "Total number of live page renders.",
	})
	pageCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scrape_page_cache_hits_total",
		Help: "Total number of page loads served from the cache.",
	})
)

func init() {
	prometheus.MustRegister(pagesRendered, pageCacheHits)
}

// Loader serves DOM documents either from the page cache or from a live
// render, refreshing the cache entry on every live render.
type Loader struct {
	renderer Renderer
	cache    Cache
}

// NewLoader constructs a Loader over the given capabilities.
func NewLoader(r Renderer, c Cache) *Loader {
	return &Loader{renderer: r, cache: c}
}

// Load returns the document for url. Unless ignoreCache is set, a live
// non-expired cache entry under cacheKey is materialized without a network
// render; otherwise the page is rendered live and the resulting HTML is
// written back with expiry now+ttl. Cache backend errors are fatal for the
// fetch; there is no silent fallback to a live render.
func (l *Loader) Load(ctx context.Context, url, cacheKey string, ttl time.Duration, ignoreCache bool) (*goquery.Document, error) {
	if !ignoreCache {
		html, ok, err := l.cache.Get(cacheKey)
		if err != nil {
			return nil, err
		}
		if ok {
			pageCacheHits.Inc()
			log.Debug().Str("url", url).Str("key", cacheKey).Msg("page cache hit")
			return parseDocument(string(html), url)
		}
	}

	html, err := l.renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	pagesRendered.Inc()

	if err := l.cache.Set(cacheKey, []byte(html), ttl); err != nil {
		return nil, err
	}
	log.Debug().Str("url", url).Str("key", cacheKey).Dur("ttl", ttl).Msg("page cached")

	return parseDocument(html, url)
}

func parseDocument(html, url string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html of %s: %w", url, err)
	}
	return doc, nil
}
