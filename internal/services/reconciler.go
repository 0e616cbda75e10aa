// Package services – Reconciler
//
// This file implements the Reconciler, which converts the raw extraction
// result of one chronicle page into a persistable Review aggregate. It
// resolves every referenced sub-entity with connect-or-create semantics
// (genre, subgenre, users, videos), downloads and content-addresses the
// poster, and enriches the record with a TMDB movie id when one can be
// resolved.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mbreban/nanarbase/internal/domain"
	"github.com/mbreban/nanarbase/internal/repo"
	"github.com/mbreban/nanarbase/internal/scrape"
	"github.com/mbreban/nanarbase/internal/tmdb"
)

// PosterStore is the asset-storage contract required by the Reconciler.
type PosterStore interface {
	// SaveFromURL downloads an asset and stores it under its content hash,
	// returning the stored filename.
	SaveFromURL(ctx context.Context, url string) (string, error)

	// Fetch downloads an asset and returns its bytes without storing it.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MovieResolver is the metadata-lookup contract required by the Reconciler.
type MovieResolver interface {
	// ResolveID returns the provider id of the first movie matching title
	// and optional year, or tmdb.ErrNotFound.
	ResolveID(ctx context.Context, title string, year *int) (int, error)
}

// Reconciler resolves the sub-entities of a raw review and assembles the
// aggregate handed to the repository for upsert.
type Reconciler struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Posters stores downloaded poster and avatar assets.
	Posters PosterStore
	// Movies resolves TMDB movie ids. May be nil when no token is configured.
	Movies MovieResolver
}

// NewReconciler constructs a Reconciler over the given capabilities.
func NewReconciler(db *gorm.DB, posters PosterStore, movies MovieResolver) *Reconciler {
	return &Reconciler{DB: db, Posters: posters, Movies: movies}
}

// Resolve turns raw into a Review ready for upsert plus the rating set to
// store alongside it. Sub-entities are connected or created; ratings without
// a numeric value are dropped; a failed TMDB resolution is tolerated and
// leaves the id nil. Any persistence or asset failure aborts the item.
func (r *Reconciler) Resolve(ctx context.Context, raw *scrape.RawReview) (*domain.Review, []domain.Rating, error) {
	genre, err := repo.EnsureGenre(ctx, r.DB, raw.Genre.Title, raw.Genre.Link)
	if err != nil {
		return nil, nil, err
	}
	subgenre, err := repo.EnsureSubgenre(ctx, r.DB, raw.Subgenre.Title, raw.Subgenre.Link, genre.ID)
	if err != nil {
		return nil, nil, err
	}

	author, err := r.ensureUser(ctx, raw.Author)
	if err != nil {
		return nil, nil, err
	}

	ratings, err := r.resolveRatings(ctx, raw.UserRatings)
	if err != nil {
		return nil, nil, err
	}

	posterID, err := r.Posters.SaveFromURL(ctx, raw.PosterURL)
	if err != nil {
		return nil, nil, err
	}

	review := &domain.Review{
		Link:              raw.Link,
		Title:             raw.Title,
		OriginalTitle:     raw.OriginalTitle,
		AlternativeTitles: raw.AlternativeTitles,
		Directors:         raw.Directors,
		OriginCountries:   raw.OriginCountries,
		CreationYear:      raw.CreationYear,
		ReleaseYear:       raw.ReleaseYear,
		RuntimeMinutes:    raw.RuntimeMinutes,
		Rarity:            raw.Rarity,
		AverageRating:     raw.AverageRating,
		PosterID:          posterID,
		AuthorID:          author.ID,
		SubgenreID:        subgenre.ID,
	}

	if err := r.resolveVideos(ctx, raw, review); err != nil {
		return nil, nil, err
	}

	review.TmdbID = r.resolveTmdbID(ctx, raw)

	return review, ratings, nil
}

// ensureUser connects or creates a user, fetching the avatar only when the
// user is new and an avatar URL is present. An absent avatar is legitimate.
func (r *Reconciler) ensureUser(ctx context.Context, raw scrape.RawUser) (*domain.User, error) {
	existing, err := repo.FindUserByUsername(ctx, r.DB, raw.Username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	var avatar []byte
	if raw.AvatarURL != "" {
		data, err := r.Posters.Fetch(ctx, raw.AvatarURL)
		if err != nil {
			return nil, err
		}
		avatar = data
	}
	return repo.EnsureUser(ctx, r.DB, raw.Username, avatar)
}

// resolveRatings maps the displayed rating list onto persistable ratings,
// dropping entries whose value could not be read from the page.
func (r *Reconciler) resolveRatings(ctx context.Context, raws []scrape.RawUserRating) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, rr := range raws {
		if rr.Rating == nil {
			log.Debug().Str("user", rr.User.Username).Msg("skipping rating without numeric value")
			continue
		}
		user, err := r.ensureUser(ctx, rr.User)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Rating{UserID: user.ID, Value: *rr.Rating})
	}
	return out, nil
}

// resolveVideos connects or creates every video referenced by the page and
// attaches the persisted rows to the review aggregate.
func (r *Reconciler) resolveVideos(ctx context.Context, raw *scrape.RawReview, review *domain.Review) error {
	for _, cv := range raw.CutVideos {
		links := make([]domain.CutVideoLink, 0, len(cv.Links))
		for _, l := range cv.Links {
			links = append(links, domain.CutVideoLink{Src: l.Src, Type: l.Type})
		}
		v, err := repo.EnsureCutVideo(ctx, r.DB, &domain.CutVideo{
			ID:            cv.ID,
			Title:         cv.Title,
			AverageRating: cv.AverageRating,
			Links:         links,
		})
		if err != nil {
			return err
		}
		review.CutVideos = append(review.CutVideos, *v)
	}

	for _, ev := range raw.EscaleVideos {
		v, err := repo.EnsureEscaleVideo(ctx, r.DB, &domain.EscaleVideo{
			ID:              ev.ID,
			Title:           ev.Title,
			PageLink:        ev.PageLink,
			PublicationDate: ev.PublicationDate,
		})
		if err != nil {
			return err
		}
		review.EscaleVideos = append(review.EscaleVideos, *v)
	}

	for _, nv := range raw.NanaroscopeVideos {
		v, err := repo.EnsureNanaroscopeVideo(ctx, r.DB, &domain.NanaroscopeVideo{
			Code:    nv.Code,
			Tagline: nv.Tagline,
		})
		if err != nil {
			return err
		}
		review.NanaroscopeVideos = append(review.NanaroscopeVideos, *v)
	}
	return nil
}

// resolveTmdbID looks up the movie id by title and release year. A provider
// miss is not an error for ingestion; the review is stored without the id.
func (r *Reconciler) resolveTmdbID(ctx context.Context, raw *scrape.RawReview) *int {
	if r.Movies == nil {
		return nil
	}
	title := raw.Title
	if raw.OriginalTitle != nil && *raw.OriginalTitle != "" {
		title = *raw.OriginalTitle
	}

	id, err := r.Movies.ResolveID(ctx, title, raw.ReleaseYear)
	if err != nil {
		if !errors.Is(err, tmdb.ErrNotFound) {
			log.Warn().Err(err).Str("title", title).Msg("tmdb resolution failed")
		}
		return nil
	}
	return &id
}
