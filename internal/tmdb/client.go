// Package tmdb is a minimal client for The Movie Database API, covering
// movie search and a cached movie-details lookup.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotFound reports a search that returned no results. Callers treat it as
// a non-fatal condition.
var ErrNotFound = errors.New("tmdb: movie not found")

const detailsAppend = "alternative_titles,credits,keywords,release_dates"

// Cache is the TTL key/value capability used for details responses.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// Client calls the TMDB v3 API with bearer-token auth. Details responses are
// cached under a TTL; search responses are not.
type Client struct {
	baseURL  string
	token    string
	language string
	ttl      time.Duration
	cache    Cache
	httpc    *http.Client
}

// New builds a Client. language is the default tag applied when a call does
// not override it.
func New(baseURL, token, language string, ttl time.Duration, cache Cache) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		language: language,
		ttl:      ttl,
		cache:    cache,
		httpc:    &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// Search runs a movie search and returns the raw response body. year is
// optional and narrows the search when present. Adult-flagged titles are
// included; a fair share of this catalogue would vanish otherwise.
func (c *Client) Search(ctx context.Context, query string, year *int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)
	params.Set("include_adult", "true")
	if year != nil {
		params.Set("year", strconv.Itoa(*year))
	}
	return c.get(ctx, "/search/movie", params)
}

// ResolveID searches for a movie by title (and optional year) and returns
// the id of the first result. An empty result set yields ErrNotFound.
func (c *Client) ResolveID(ctx context.Context, title string, year *int) (int, error) {
	body, err := c.Search(ctx, title, year)
	if err != nil {
		return 0, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("tmdb: decode search response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return 0, ErrNotFound
	}

	id := parsed.Results[0].ID
	log.Debug().Str("title", title).Int("tmdb_id", id).Msg("tmdb id resolved")
	return id, nil
}

// Details returns the movie-details document for id, including the appended
// sub-resources. Unless ignoreCache is set a live cache entry is served;
// every live call rewrites the entry with a fresh TTL. lang overrides the
// client default when non-empty.
func (c *Client) Details(ctx context.Context, id int, ignoreCache bool, lang string) (json.RawMessage, error) {
	if lang == "" {
		lang = c.language
	}
	key := fmt.Sprintf("nanarbase:tmdb:movie:%d:%s", id, lang)

	if !ignoreCache {
		cached, ok, err := c.cache.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Debug().Str("key", key).Msg("tmdb cache hit")
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("language", lang)
	params.Set("append_to_response", detailsAppend)

	body, err := c.get(ctx, "/movie/"+strconv.Itoa(id), params)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, body, c.ttl); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tmdb: %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
