// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as correlation IDs, logging/redaction, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbreban/nanarbase/internal/config"
	"github.com/mbreban/nanarbase/internal/http/handlers"
	"github.com/mbreban/nanarbase/internal/http/middleware"
)

// Services groups the application services injected into the router.
type Services struct {
	Ingest  handlers.IngestService
	Reviews handlers.ReviewService
	Movies  handlers.MovieService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures metrics, rate limiting, CORS and security headers,
// health and metrics endpoints, and then mounts the versioned public API
// under /api/v*.
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. RedactingLogger: structured logs with sensitive-header scrubbing
//  3. Recovery: capture panics after logger
//  4. Body size limiter
//  5. Metrics
//  6. Rate limiter (per IP)
//  7. CORS and Security headers
func RegisterRoutes(r *gin.Engine, svcs Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 2) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
		},
	}))

	// 3) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 4) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(svcs.Ingest, svcs.Reviews, svcs.Movies, cfg.Scrape.Delay)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Ingestion
		api.POST("/reviews/fetch", h.FetchReview)
		api.POST("/reviews/fetch-batch", h.FetchReviews)

		// Reviews
		api.GET("/reviews", h.ListReviews)
		api.GET("/reviews/one", h.GetReview)
		api.DELETE("/reviews/one", h.DeleteReview)

		// Movie metadata
		api.GET("/movies/search", h.SearchMovies)
		api.GET("/movies/:id", h.MovieDetails)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
