// Movie metadata HTTP handlers.
//
// This file exposes the TMDB passthrough endpoints:
//   - GET /movies/search?query=&year=
//   - GET /movies/:id?lang=&ignore_cache=
//
// Responses are relayed verbatim from the provider (JSON), so clients get
// the full metadata document without this service re-modelling it.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbreban/nanarbase/internal/services"
	"github.com/mbreban/nanarbase/internal/sysutil"
)

// MovieService defines the metadata passthrough operations consumed by HTTP
// handlers.
type MovieService interface {
	// Search proxies a provider movie search.
	Search(ctx context.Context, query string, year *int) (json.RawMessage, error)
	// Details proxies a cached provider details lookup.
	Details(ctx context.Context, id int, ignoreCache bool, lang string) (json.RawMessage, error)
}

// SearchMovies handles GET /movies/search.
func (h *Handlers) SearchMovies(c *gin.Context) {
	query := c.Query("query")

	var year *int
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "year must be an integer")
			return
		}
		year = &n
	}

	body, err := h.movieSvc.Search(c.Request.Context(), query, year)
	switch {
	case errors.Is(err, services.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter is required")
	case errors.Is(err, services.ErrProviderDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "movie metadata provider is not configured")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "movie search failed")
	default:
		c.Data(http.StatusOK, "application/json", body)
	}
}

// MovieDetails handles GET /movies/:id.
func (h *Handlers) MovieDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be an integer")
		return
	}

	ignoreCache := sysutil.IsTruthy(c.Query("ignore_cache"))
	lang := c.Query("lang")

	body, err := h.movieSvc.Details(c.Request.Context(), id, ignoreCache, lang)
	switch {
	case errors.Is(err, services.ErrMovieNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "movie not found")
	case errors.Is(err, services.ErrProviderDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "movie metadata provider is not configured")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "movie lookup failed")
	default:
		c.Data(http.StatusOK, "application/json", body)
	}
}
