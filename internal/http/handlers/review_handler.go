// Review HTTP handlers.
//
// This file exposes the read and delete endpoints over stored reviews:
//   - GET    /reviews            (list, paginated)
//   - GET    /reviews/one?link=  (single review by chronicle link)
//   - DELETE /reviews/one?link=  (delete review, ratings, poster asset)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbreban/nanarbase/internal/domain"
	"github.com/mbreban/nanarbase/internal/services"
	"github.com/mbreban/nanarbase/internal/utils"
)

// ReviewService defines the review read/delete operations consumed by HTTP
// handlers.
type ReviewService interface {
	// ListPage returns a page of reviews and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Review, int64, error)
	// GetByLink fetches the review stored under a chronicle link.
	GetByLink(ctx context.Context, link string) (*domain.Review, error)
	// DeleteByLink removes a review, its ratings and its poster asset.
	DeleteByLink(ctx context.Context, link string) error
}

// Handlers groups the HTTP endpoints of the gateway. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	ingestSvc    IngestService
	reviewSvc    ReviewService
	movieSvc     MovieService
	defaultDelay time.Duration
}

// New constructs a Handlers instance bound to the given services.
// defaultDelay is the inter-item pause applied to batch runs that do not
// specify one.
func New(ingestSvc IngestService, reviewSvc ReviewService, movieSvc MovieService, defaultDelay time.Duration) *Handlers {
	return &Handlers{
		ingestSvc:    ingestSvc,
		reviewSvc:    reviewSvc,
		movieSvc:     movieSvc,
		defaultDelay: defaultDelay,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListReviewsResponse wraps a page of reviews and pagination information.
type ListReviewsResponse struct {
	Reviews    []domain.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// ListReviews handles GET /reviews.
func (h *Handlers) ListReviews(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)

	items, total, err := h.reviewSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list reviews")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListReviewsResponse{
		Reviews: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetReview handles GET /reviews/one?link=.
func (h *Handlers) GetReview(c *gin.Context) {
	link := c.Query("link")
	if link == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "link query parameter is required")
		return
	}

	review, err := h.reviewSvc.GetByLink(c.Request.Context(), link)
	switch {
	case errors.Is(err, services.ErrReviewNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load review")
	default:
		ok(c, http.StatusOK, review)
	}
}

// DeleteReview handles DELETE /reviews/one?link=.
func (h *Handlers) DeleteReview(c *gin.Context) {
	link := c.Query("link")
	if link == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "link query parameter is required")
		return
	}

	err := h.reviewSvc.DeleteByLink(c.Request.Context(), link)
	switch {
	case errors.Is(err, services.ErrReviewNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete review")
	default:
		noContent(c)
	}
}
