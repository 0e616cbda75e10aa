// Package services – ReviewService and MovieService
//
// This file implements the read-side services behind the gateway: paginated
// review listing, single-review lookup and deletion (including the stored
// poster asset), and the TMDB passthrough operations.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mbreban/nanarbase/internal/domain"
	"github.com/mbreban/nanarbase/internal/repo"
	"github.com/mbreban/nanarbase/internal/tmdb"
)

// AssetDeleter removes stored assets by filename.
type AssetDeleter interface {
	Delete(name string) error
}

// ReviewService provides read and delete operations over stored reviews.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Assets removes poster files when their review is deleted.
	Assets AssetDeleter
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB, assets AssetDeleter) *ReviewService {
	return &ReviewService{DB: db, Assets: assets}
}

// ListPage returns a page of reviews plus the total count. It applies
// defaults for invalid page/pageSize values.
func (s *ReviewService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountReviews(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}

	items, err := repo.ListReviewsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// GetByLink fetches the review stored under link, or ErrReviewNotFound.
func (s *ReviewService) GetByLink(ctx context.Context, link string) (*domain.Review, error) {
	r, err := repo.FindReviewByLink(ctx, s.DB, link)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return r, err
}

// DeleteByLink removes the review stored under link together with its
// ratings and its poster asset. A poster file that is already gone does not
// fail the deletion.
func (s *ReviewService) DeleteByLink(ctx context.Context, link string) error {
	r, err := s.GetByLink(ctx, link)
	if err != nil {
		return err
	}
	if err := repo.DeleteReview(ctx, s.DB, r.ID); err != nil {
		return err
	}

	if r.PosterID != "" {
		if err := s.Assets.Delete(r.PosterID); err != nil {
			log.Warn().Err(err).Str("poster", r.PosterID).Msg("poster asset cleanup failed")
		}
	}
	return nil
}

// MovieSearcher is the metadata-provider contract required by MovieService.
type MovieSearcher interface {
	Search(ctx context.Context, query string, year *int) (json.RawMessage, error)
	Details(ctx context.Context, id int, ignoreCache bool, lang string) (json.RawMessage, error)
}

// MovieService exposes the metadata-provider passthrough operations.
type MovieService struct {
	// Client performs the provider calls.
	Client MovieSearcher
}

// NewMovieService constructs a MovieService.
func NewMovieService(client MovieSearcher) *MovieService {
	return &MovieService{Client: client}
}

// Search proxies a movie search. An empty query is rejected before any
// provider call is made.
func (s *MovieService) Search(ctx context.Context, query string, year *int) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if s.Client == nil {
		return nil, ErrProviderDisabled
	}
	return s.Client.Search(ctx, query, year)
}

// Details proxies a movie-details lookup, mapping a provider miss onto
// ErrMovieNotFound.
func (s *MovieService) Details(ctx context.Context, id int, ignoreCache bool, lang string) (json.RawMessage, error) {
	if s.Client == nil {
		return nil, ErrProviderDisabled
	}
	body, err := s.Client.Details(ctx, id, ignoreCache, lang)
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, ErrMovieNotFound
	}
	return body, err
}
