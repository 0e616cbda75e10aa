// Package domain defines the persistence models for reviews, genres, users,
// ratings, and the video variants attached to a review. These types are
// mapped with GORM and form the core data layer of the ingestion backend.
package domain

import (
	"time"
)

// Rarity classifies how hard the reviewed item is to find. It is the single
// canonical enum for the whole application; the scrape layer maps the site's
// French labels onto it and the storage layer persists it verbatim.
type Rarity string

// The closed set of rarity values, from easiest to hardest to find.
const (
	RarityCommon         Rarity = "common"
	RarityFindable       Rarity = "findable"
	RarityRare           Rarity = "rare"
	RarityExotic         Rarity = "exotic"
	RarityCollectorsItem Rarity = "collectors_item"
	RarityUnfindable     Rarity = "unfindable"
	RarityNeverReleased  Rarity = "never_released"
)

// Valid reports whether r is one of the seven known rarity values.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityFindable, RarityRare, RarityExotic,
		RarityCollectorsItem, RarityUnfindable, RarityNeverReleased:
		return true
	}
	return false
}

// Review is the durable record of one scraped chronicle, keyed by its page
// link. CreatedAt/UpdatedAt are managed by GORM and drive the
// inserted-vs-updated outcome classification after an upsert.
type Review struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	Link              string    `json:"link"               gorm:"type:varchar(512);not null;uniqueIndex:ux_reviews_link"`
	Title             string    `json:"title"              gorm:"type:varchar(255);not null"`
	OriginalTitle     *string   `json:"original_title,omitempty" gorm:"type:varchar(255)"`
	AlternativeTitles []string  `json:"alternative_titles,omitempty" gorm:"serializer:json"`
	Directors         []string  `json:"directors"          gorm:"serializer:json"`
	OriginCountries   []string  `json:"origin_countries"   gorm:"serializer:json"`
	CreationYear      *int      `json:"creation_year,omitempty"`
	ReleaseYear       *int      `json:"release_year,omitempty"`
	RuntimeMinutes    int       `json:"runtime_minutes"    gorm:"not null"`
	Rarity            Rarity    `json:"rarity"             gorm:"type:varchar(32);not null"`
	AverageRating     float64   `json:"average_rating"     gorm:"not null"`
	PosterID          string    `json:"poster_id"          gorm:"type:varchar(128)"`
	TmdbID            *int      `json:"tmdb_id,omitempty"`
	AuthorID          string    `json:"author_id"          gorm:"type:char(36);not null;index"`
	SubgenreID        string    `json:"subgenre_id"        gorm:"type:char(36);not null;index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Author   User     `json:"author"   gorm:"foreignKey:AuthorID;references:ID"`
	Subgenre Subgenre `json:"subgenre" gorm:"foreignKey:SubgenreID;references:ID"`

	// Ratings are owned by the review and replaced wholesale on re-ingest.
	Ratings []Rating `json:"ratings" gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// Video variants are shared sub-entities keyed by their natural
	// identifiers; a review only references them.
	CutVideos         []CutVideo         `json:"cut_videos"         gorm:"many2many:review_cut_videos"`
	EscaleVideos      []EscaleVideo      `json:"escale_videos"      gorm:"many2many:review_escale_videos"`
	NanaroscopeVideos []NanaroscopeVideo `json:"nanaroscope_videos" gorm:"many2many:review_nanaroscope_videos"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Inserted reports whether the persisted row has never been updated since
// creation, i.e. the upsert that produced it was an insert.
func (r *Review) Inserted() bool {
	return r.CreatedAt.Equal(r.UpdatedAt)
}

// Genre is a top-level category, deduplicated by title.
type Genre struct {
	ID        string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(128);not null;uniqueIndex:ux_genres_title"`
	Link      string    `json:"link"  gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Genre.
func (Genre) TableName() string { return "genres" }

// Subgenre is a second-level category nested under a Genre, deduplicated by
// title. Resolving a subgenre materializes its parent genre as well.
type Subgenre struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title"    gorm:"type:varchar(128);not null;uniqueIndex:ux_subgenres_title"`
	Link      string    `json:"link"     gorm:"type:varchar(512);not null"`
	GenreID   string    `json:"genre_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Genre Genre `json:"genre" gorm:"foreignKey:GenreID;references:ID"`
}

// TableName returns the database table name for Subgenre.
func (Subgenre) TableName() string { return "subgenres" }

// User is a review author or rating author, deduplicated by username.
// The avatar may legitimately be absent when the source page exposes no
// usable avatar URL.
type User struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(128);not null;uniqueIndex:ux_users_username"`
	Avatar    []byte    `json:"-"        gorm:"type:blob"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Rating is one user's score on a review. A user rates a given review at
// most once; the whole set is recreated on every re-ingest of the review.
type Rating struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	ReviewID  string    `json:"review_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_ratings_review_user"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_ratings_review_user"`
	Value     float64   `json:"value"     gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string { return "ratings" }

// CutVideo is an excerpt video identified by the site's numeric id.
type CutVideo struct {
	ID            int64          `json:"id"             gorm:"primaryKey;autoIncrement:false"`
	Title         string         `json:"title"          gorm:"type:varchar(255);not null"`
	AverageRating float64        `json:"average_rating" gorm:"not null"`
	Links         []CutVideoLink `json:"links"          gorm:"foreignKey:CutVideoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName returns the database table name for CutVideo.
func (CutVideo) TableName() string { return "cut_videos" }

// CutVideoLink is one playable media source of a cut video.
type CutVideoLink struct {
	ID         string `json:"id"           gorm:"type:char(36);primaryKey"`
	CutVideoID int64  `json:"cut_video_id" gorm:"not null;index"`
	Src        string `json:"src"          gorm:"type:varchar(512);not null"`
	Type       string `json:"type"         gorm:"type:varchar(64);not null"`
}

// TableName returns the database table name for CutVideoLink.
func (CutVideoLink) TableName() string { return "cut_video_links" }

// EscaleVideo is an episode of the "escale" video series, identified by the
// numeric id embedded in its caption.
type EscaleVideo struct {
	ID              int64     `json:"id"               gorm:"primaryKey;autoIncrement:false"`
	Title           string    `json:"title"            gorm:"type:varchar(255);not null"`
	PageLink        string    `json:"page_link"        gorm:"type:varchar(512);not null"`
	PublicationDate time.Time `json:"publication_date" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for EscaleVideo.
func (EscaleVideo) TableName() string { return "escale_videos" }

// NanaroscopeVideo is an episode of the "nanaroscope" series, keyed by its
// zero-padded season/episode code (e.g. "S02E05").
type NanaroscopeVideo struct {
	Code      string    `json:"code"    gorm:"type:varchar(16);primaryKey;column:code"`
	Tagline   string    `json:"tagline" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for NanaroscopeVideo.
func (NanaroscopeVideo) TableName() string { return "nanaroscope_videos" }
