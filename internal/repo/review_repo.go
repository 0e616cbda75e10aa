// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model and its owned ratings.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a review is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations are surfaced as ErrConflict.
//   - On other DB errors (connectivity issues, etc.), the raw gorm error
//     is propagated.
//
// Functions:
//
//   - FindReviewByLink(ctx, db, link) -> *domain.Review, error
//     Fetches one review with all relations preloaded, or ErrNotFound.
//
//   - ListReviewLinks(ctx, db) -> []string, error
//     Returns the links of every stored review, for batch filtering.
//
//   - CountReviews(ctx, db) -> (int64, error)
//     Returns the total number of stored reviews.
//
//   - ListReviewsPage(ctx, db, offset, limit) -> []domain.Review, error
//     Returns a paginated slice of reviews, newest first.
//
//   - UpsertReview(ctx, db, review) -> *domain.Review, error
//     Inserts or fully updates the review keyed by its link, replacing
//     video associations. The returned row's timestamps distinguish an
//     insert from an update.
//
//   - ReplaceRatings(ctx, db, reviewID, ratings) -> error
//     Recreates the review's rating set wholesale.
//
//   - DeleteReview(ctx, db, id) -> error
//     Removes the review, its ratings and its video join rows.
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbreban/nanarbase/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("repo: unique constraint violation")

// translateErr maps driver-level uniqueness violations onto ErrConflict and
// passes every other error through untouched.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

// reviewPreloads applies every relation preload needed to serve a full
// review document.
func reviewPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Subgenre").
		Preload("Subgenre.Genre").
		Preload("Ratings").
		Preload("Ratings.User").
		Preload("CutVideos").
		Preload("CutVideos.Links").
		Preload("EscaleVideos").
		Preload("NanaroscopeVideos")
}

// FindReviewByLink fetches the review stored under link with all relations
// preloaded. If the record does not exist, it returns ErrNotFound.
func FindReviewByLink(ctx context.Context, db *gorm.DB, link string) (*domain.Review, error) {
	var r domain.Review
	err := reviewPreloads(db.WithContext(ctx)).
		Where("link = ?", link).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviewLinks returns the link of every stored review. The batch
// orchestrator uses it to skip already-ingested chronicles.
func ListReviewLinks(ctx context.Context, db *gorm.DB) ([]string, error) {
	var links []string
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Pluck("link", &links).Error
	return links, err
}

// CountReviews returns the total number of stored reviews.
func CountReviews(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Count(&total).Error
	return total, err
}

// ListReviewsPage returns a paginated slice of reviews ordered by creation
// time descending. Relations are preloaded. Use CountReviews to obtain the
// total for pagination metadata.
func ListReviewsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := reviewPreloads(db.WithContext(ctx)).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpsertReview inserts or updates the review keyed by review.Link. On update
// every scalar column is overwritten while the original ID and CreatedAt are
// preserved, so the caller can classify the outcome from the returned row's
// timestamps. Video associations are replaced to match the incoming set;
// ratings are left to ReplaceRatings.
func UpsertReview(ctx context.Context, db *gorm.DB, review *domain.Review) (*domain.Review, error) {
	tx := db.WithContext(ctx)

	var existing domain.Review
	err := tx.Where("link = ?", review.Link).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		review.ID = uuid.NewString()
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return nil, translateErr(err)
		}
	case err != nil:
		return nil, err
	default:
		review.ID = existing.ID
		review.CreatedAt = existing.CreatedAt
		if err := tx.Omit(clause.Associations).Save(review).Error; err != nil {
			return nil, translateErr(err)
		}
	}

	if err := tx.Model(review).Association("CutVideos").Replace(review.CutVideos); err != nil {
		return nil, translateErr(err)
	}
	if err := tx.Model(review).Association("EscaleVideos").Replace(review.EscaleVideos); err != nil {
		return nil, translateErr(err)
	}
	if err := tx.Model(review).Association("NanaroscopeVideos").Replace(review.NanaroscopeVideos); err != nil {
		return nil, translateErr(err)
	}
	return review, nil
}

// ReplaceRatings deletes the review's stored ratings and inserts the given
// set in their place. Passing an empty slice clears the ratings.
func ReplaceRatings(ctx context.Context, db *gorm.DB, reviewID string, ratings []domain.Rating) error {
	tx := db.WithContext(ctx)

	if err := tx.Where("review_id = ?", reviewID).Delete(&domain.Rating{}).Error; err != nil {
		return err
	}
	if len(ratings) == 0 {
		return nil
	}
	for i := range ratings {
		ratings[i].ID = uuid.NewString()
		ratings[i].ReviewID = reviewID
	}
	if err := tx.Omit(clause.Associations).Create(&ratings).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// DeleteReview removes the review row, its ratings and its video join rows.
// The shared video entities themselves are kept. Returns ErrNotFound when no
// review exists under id.
func DeleteReview(ctx context.Context, db *gorm.DB, id string) error {
	tx := db.WithContext(ctx)

	var r domain.Review
	if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
		return err
	}

	if err := tx.Where("review_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
		return err
	}
	for _, assoc := range []string{"CutVideos", "EscaleVideos", "NanaroscopeVideos"} {
		if err := tx.Model(&r).Association(assoc).Clear(); err != nil {
			return err
		}
	}
	return tx.Delete(&r).Error
}
