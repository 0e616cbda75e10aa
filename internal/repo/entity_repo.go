// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides connect-or-create helpers for the
// shared sub-entities referenced by reviews: genres, users and videos.
//
// Every Ensure* function resolves an entity by its natural key and creates
// it when absent, returning the persisted row either way. Existing rows are
// never mutated; re-running an Ensure* call with different attribute values
// is a no-op beyond the lookup.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbreban/nanarbase/internal/domain"
)

// EnsureGenre resolves a genre by title, creating it with the given link
// when absent.
func EnsureGenre(ctx context.Context, db *gorm.DB, title, link string) (*domain.Genre, error) {
	var g domain.Genre
	err := db.WithContext(ctx).
		Where("title = ?", title).
		Attrs(domain.Genre{ID: uuid.NewString(), Link: link}).
		FirstOrCreate(&g).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &g, nil
}

// EnsureSubgenre resolves a subgenre by title under the given parent genre,
// creating it when absent.
func EnsureSubgenre(ctx context.Context, db *gorm.DB, title, link, genreID string) (*domain.Subgenre, error) {
	var s domain.Subgenre
	err := db.WithContext(ctx).
		Where("title = ?", title).
		Attrs(domain.Subgenre{ID: uuid.NewString(), Link: link, GenreID: genreID}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &s, nil
}

// FindUserByUsername fetches a user by their natural key, or ErrNotFound.
func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

// EnsureUser resolves a user by username, creating them with the given
// avatar bytes when absent. avatar may be nil.
func EnsureUser(ctx context.Context, db *gorm.DB, username string, avatar []byte) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username = ?", username).
		Attrs(domain.User{ID: uuid.NewString(), Avatar: avatar}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

// EnsureCutVideo resolves a cut video by its natural numeric id, creating it
// together with its media links when absent.
func EnsureCutVideo(ctx context.Context, db *gorm.DB, v *domain.CutVideo) (*domain.CutVideo, error) {
	var existing domain.CutVideo
	err := db.WithContext(ctx).
		Preload("Links").
		Where("id = ?", v.ID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for i := range v.Links {
		v.Links[i].ID = uuid.NewString()
		v.Links[i].CutVideoID = v.ID
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, translateErr(err)
	}
	return v, nil
}

// EnsureEscaleVideo resolves an escale episode by its natural numeric id,
// creating it when absent.
func EnsureEscaleVideo(ctx context.Context, db *gorm.DB, v *domain.EscaleVideo) (*domain.EscaleVideo, error) {
	var existing domain.EscaleVideo
	err := db.WithContext(ctx).
		Where("id = ?", v.ID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, translateErr(err)
	}
	return v, nil
}

// EnsureNanaroscopeVideo resolves a nanaroscope episode by its season and
// episode code, creating it when absent.
func EnsureNanaroscopeVideo(ctx context.Context, db *gorm.DB, v *domain.NanaroscopeVideo) (*domain.NanaroscopeVideo, error) {
	var existing domain.NanaroscopeVideo
	err := db.WithContext(ctx).
		Where("code = ?", v.Code).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, translateErr(err)
	}
	return v, nil
}
