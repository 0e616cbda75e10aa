package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(key string) ([]byte, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(key string, value []byte, _ time.Duration) error {
	c.sets++
	c.entries[key] = value
	return nil
}

func intPtr(v int) *int { return &v }

func TestResolveID_FirstResultWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("year"); got != "1988" {
			t.Errorf("year = %q", got)
		}
		if got := r.URL.Query().Get("include_adult"); got != "true" {
			t.Errorf("include_adult = %q, want true", got)
		}
		w.Write([]byte(`{"results":[{"id":4242},{"id":9999}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token", "fr-FR", time.Minute, newMapCache())
	id, err := c.ResolveID(context.Background(), "Jaguar Force", intPtr(1988))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 4242 {
		t.Errorf("id = %d, want 4242", id)
	}
}

func TestResolveID_EmptyResultsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "t", "fr-FR", time.Minute, newMapCache())
	if _, err := c.ResolveID(context.Background(), "Inconnu", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDetails_CachesAndServesFromCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/movie/4242" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); !strings.Contains(got, "credits") {
			t.Errorf("append_to_response = %q", got)
		}
		w.Write([]byte(`{"id":4242,"title":"Jaguar Force"}`))
	}))
	defer srv.Close()

	cache := newMapCache()
	c := New(srv.URL, "t", "fr-FR", time.Minute, cache)

	first, err := c.Details(context.Background(), 4242, false, "")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	second, err := c.Details(context.Background(), 4242, false, "")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1", calls)
	}
	if string(first) != string(second) {
		t.Error("cached body differs from live body")
	}
	if _, ok := cache.entries["nanarbase:tmdb:movie:4242:fr-FR"]; !ok {
		t.Error("expected entry under the namespaced details key")
	}
}

func TestDetails_IgnoreCacheRefetchesAndRewrites(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	cache := newMapCache()
	cache.entries["nanarbase:tmdb:movie:1:fr-FR"] = []byte(`{"id":1,"stale":true}`)

	c := New(srv.URL, "t", "fr-FR", time.Minute, cache)
	body, err := c.Details(context.Background(), 1, true, "")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if calls != 1 {
		t.Errorf("server hit %d times, want 1", calls)
	}
	if strings.Contains(string(body), "stale") {
		t.Error("forced fetch must bypass the cached entry")
	}
	if strings.Contains(string(cache.entries["nanarbase:tmdb:movie:1:fr-FR"]), "stale") {
		t.Error("forced fetch must rewrite the cached entry")
	}
}

func TestDetails_LanguageScopesTheCacheKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lang":"` + r.URL.Query().Get("language") + `"}`))
	}))
	defer srv.Close()

	cache := newMapCache()
	c := New(srv.URL, "t", "fr-FR", time.Minute, cache)

	if _, err := c.Details(context.Background(), 7, false, ""); err != nil {
		t.Fatalf("details fr: %v", err)
	}
	if _, err := c.Details(context.Background(), 7, false, "en-US"); err != nil {
		t.Fatalf("details en: %v", err)
	}
	if len(cache.entries) != 2 {
		t.Errorf("expected one entry per language, got %d", len(cache.entries))
	}
}

func TestDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "t", "fr-FR", time.Minute, newMapCache())
	if _, err := c.Details(context.Background(), 123, false, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
