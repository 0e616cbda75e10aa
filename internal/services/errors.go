// Package services defines the business logic of the ingestion backend: the
// reconciler that turns extracted page data into persistent entities, and the
// orchestrator that drives single-item and batch ingestion runs.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers. Translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrMovieNotFound indicates that the requested movie is unknown to the
	// metadata provider.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrEmptyQuery is returned when a movie search is requested without a
	// query string.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoLinks is returned when the chronicle index yields no links at all,
	// which indicates a broken page rather than an empty site.
	ErrNoLinks = errors.New("no chronicle links discovered")

	// ErrProviderDisabled is returned by movie operations when the metadata
	// provider is not configured (missing API token).
	ErrProviderDisabled = errors.New("movie metadata provider is not configured")
)
