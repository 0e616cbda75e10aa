// Package scrape implements the ingestion side of the application: cache key
// derivation, cache-aware page loading, and extraction of typed review data
// from rendered chronicle pages.
package scrape

import (
	"time"

	"github.com/mbreban/nanarbase/internal/domain"
)

// RawReview is the ephemeral result of extracting one chronicle page. It is
// produced by the Extractor and consumed immediately by the reconciler; it is
// never persisted as-is.
type RawReview struct {
	Link              string
	Title             string
	OriginalTitle     *string
	AlternativeTitles []string
	Directors         []string
	CreationYear      *int
	ReleaseYear       *int
	OriginCountries   []string
	RuntimeMinutes    int
	Rarity            domain.Rarity
	AverageRating     float64
	Author            RawUser
	UserRatings       []RawUserRating
	Genre             RawGenre
	Subgenre          RawGenre
	CutVideos         []RawCutVideo
	EscaleVideos      []RawEscaleVideo
	NanaroscopeVideos []RawNanaroscopeVideo
	PosterURL         string
}

// RawUser identifies a site user together with the avatar URL found next to
// their name. The avatar URL may be empty.
type RawUser struct {
	Username  string
	AvatarURL string
}

// RawUserRating is one user's score as displayed on the page. Rating is nil
// when the displayed value is missing or not numeric; such entries are
// dropped during reconciliation.
type RawUserRating struct {
	User   RawUser
	Rating *float64
}

// RawGenre is a genre or subgenre reference taken from the breadcrumb.
type RawGenre struct {
	Title string
	Link  string
}

// RawCutVideo is an excerpt video block. All fields are required; a cut
// video with no media links is an extraction failure.
type RawCutVideo struct {
	ID            int64
	Title         string
	AverageRating float64
	Links         []RawMediaLink
}

// RawMediaLink is one source/type pair of a cut video.
type RawMediaLink struct {
	Src  string
	Type string
}

// RawEscaleVideo is an "escale" episode derived from its composite caption.
type RawEscaleVideo struct {
	ID              int64
	Title           string
	PageLink        string
	PublicationDate time.Time
}

// RawNanaroscopeVideo is a "nanaroscope" episode: a zero-padded S##E## code
// and the tagline following the colon in its caption.
type RawNanaroscopeVideo struct {
	Code    string
	Tagline string
}
