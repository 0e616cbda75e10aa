// Ingestion HTTP handlers.
//
// This file exposes the endpoints that trigger ingestion runs:
//   - POST /reviews/fetch        (single chronicle)
//   - POST /reviews/fetch-batch  (sequential batch over the index)
//
// Handlers are transport-thin: they validate input, call the ingest service,
// and translate results into HTTP responses. Every failure propagated from an
// ingestion run is flattened into a single generic internal_error envelope at
// this boundary; the detailed cause stays in the server logs.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbreban/nanarbase/internal/http/middleware"
	"github.com/mbreban/nanarbase/internal/services"
)

// IngestService defines the ingestion operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IngestService interface {
	// FetchAndUpsertReview ingests a single chronicle page.
	FetchAndUpsertReview(ctx context.Context, link string, ignoreCache bool) (*services.OutcomeSummary, error)
	// FetchAndUpsertReviews runs a sequential batch over the chronicle index.
	FetchAndUpsertReviews(ctx context.Context, delay time.Duration, maxCount *int, update, ignoreCache bool) ([]services.OutcomeSummary, error)
}

// FetchReviewRequest is the JSON payload for single-chronicle ingestion.
type FetchReviewRequest struct {
	// Link is the absolute URL of the chronicle page.
	Link string `json:"link" binding:"required,url"`
	// IgnoreCache forces a live render even when a cached copy exists.
	IgnoreCache bool `json:"ignore_cache"`
}

// FetchBatchRequest is the JSON payload for batch ingestion.
type FetchBatchRequest struct {
	// DelayMs pauses between items; the configured default applies when absent.
	DelayMs *int `json:"delay_ms" binding:"omitempty,gte=0"`
	// MaxCount bounds the number of items processed.
	MaxCount *int `json:"max_count" binding:"omitempty,gte=0"`
	// Update re-ingests chronicles that are already stored.
	Update bool `json:"update"`
	// IgnoreCache forces live renders for every page of the run.
	IgnoreCache bool `json:"ignore_cache"`
}

// FetchBatchResponse wraps the per-item outcome summaries of a batch run.
type FetchBatchResponse struct {
	Count   int                       `json:"count"`
	Reviews []services.OutcomeSummary `json:"reviews"`
}

// FetchReview handles POST /reviews/fetch.
func (h *Handlers) FetchReview(c *gin.Context) {
	var req FetchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "link must be a valid absolute URL")
		return
	}

	summary, err := h.ingestSvc.FetchAndUpsertReview(c.Request.Context(), req.Link, req.IgnoreCache)
	if err != nil {
		h.failIngest(c, err)
		return
	}
	ok(c, http.StatusOK, summary)
}

// FetchReviews handles POST /reviews/fetch-batch.
func (h *Handlers) FetchReviews(c *gin.Context) {
	var req FetchBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid batch parameters")
		return
	}

	delay := h.defaultDelay
	if req.DelayMs != nil {
		delay = time.Duration(*req.DelayMs) * time.Millisecond
	}

	summaries, err := h.ingestSvc.FetchAndUpsertReviews(c.Request.Context(), delay, req.MaxCount, req.Update, req.IgnoreCache)
	if err != nil {
		h.failIngest(c, err)
		return
	}
	ok(c, http.StatusOK, FetchBatchResponse{Count: len(summaries), Reviews: summaries})
}

// failIngest logs the detailed ingestion failure and answers with the flat
// internal_error envelope.
func (h *Handlers) failIngest(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)
	lg.Error().Err(err).Msg("ingestion failed")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "ingestion failed")
}
