// Package services – Ingest orchestrator
//
// This file implements the ingestion state machine driving single-item and
// batch runs: discover index links, filter already-ingested chronicles,
// then per item load the page (cache-aware), extract its fields, reconcile
// sub-entities and upsert the aggregate. Batch runs are strictly sequential
// with a blocking inter-item delay, and abort on the first failing item.
package services

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mbreban/nanarbase/internal/domain"
	"github.com/mbreban/nanarbase/internal/repo"
	"github.com/mbreban/nanarbase/internal/scrape"
)

// Outcome classifies what an upsert did to the store.
type Outcome string

// The two possible upsert outcomes.
const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
)

// OutcomeSummary is the per-item result reported by ingestion runs.
type OutcomeSummary struct {
	ID            string  `json:"id"`
	Link          string  `json:"link"`
	Title         string  `json:"title"`
	ReleaseYear   *int    `json:"release_year,omitempty"`
	AverageRating float64 `json:"average_rating"`
	Outcome       Outcome `json:"outcome"`
}

var reviewsUpserted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_reviews_upserted_total",
	Help: "Total number of reviews upserted, by outcome.",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(reviewsUpserted)
}

// PageLoader is the cache-aware document loading contract required by the
// orchestrator.
type PageLoader interface {
	Load(ctx context.Context, url, cacheKey string, ttl time.Duration, ignoreCache bool) (*goquery.Document, error)
}

// PageExtractor is the field-extraction contract required by the
// orchestrator.
type PageExtractor interface {
	ChronicleLinks(doc *goquery.Document) []string
	AbsoluteURL(href string) string
	Extract(doc *goquery.Document, pageURL string) (*scrape.RawReview, error)
}

// IngestService orchestrates ingestion runs. All runs are sequential; the
// service holds no mutable state between calls.
type IngestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Loader serves rendered documents, cache first.
	Loader PageLoader
	// Extractor turns documents into raw review data.
	Extractor PageExtractor
	// Reconciler resolves raw data into persistable aggregates.
	Reconciler *Reconciler

	// IndexURL is the absolute URL of the chronicle index page.
	IndexURL string
	// PageTTL is the cache lifetime of rendered pages.
	PageTTL time.Duration
}

// NewIngestService constructs an IngestService.
func NewIngestService(db *gorm.DB, loader PageLoader, extractor PageExtractor, rec *Reconciler, indexURL string, pageTTL time.Duration) *IngestService {
	return &IngestService{
		DB:         db,
		Loader:     loader,
		Extractor:  extractor,
		Reconciler: rec,
		IndexURL:   indexURL,
		PageTTL:    pageTTL,
	}
}

// FetchAndUpsertReview ingests a single chronicle page and reports the
// outcome. ignoreCache forces a live render even when a cached copy exists.
func (s *IngestService) FetchAndUpsertReview(ctx context.Context, link string, ignoreCache bool) (*OutcomeSummary, error) {
	doc, err := s.Loader.Load(ctx, link, scrape.DeriveCacheKey(link), s.PageTTL, ignoreCache)
	if err != nil {
		return nil, err
	}

	raw, err := s.Extractor.Extract(doc, link)
	if err != nil {
		return nil, err
	}

	review, ratings, err := s.Reconciler.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	stored, err := repo.UpsertReview(ctx, s.DB, review)
	if err != nil {
		return nil, err
	}
	if err := repo.ReplaceRatings(ctx, s.DB, stored.ID, ratings); err != nil {
		return nil, err
	}

	summary := summarize(stored)
	reviewsUpserted.WithLabelValues(string(summary.Outcome)).Inc()
	log.Info().
		Str("link", stored.Link).
		Str("title", stored.Title).
		Str("outcome", string(summary.Outcome)).
		Msg("review upserted")
	return summary, nil
}

// FetchAndUpsertReviews runs a batch over the chronicle index. Links already
// present in the store are skipped unless update is set; maxCount, when
// non-nil, bounds the number of items processed. Items run strictly one
// after another with a blocking delay in between, and the first failing item
// aborts the whole batch. Summaries of items completed before the failure
// are returned alongside the error.
func (s *IngestService) FetchAndUpsertReviews(ctx context.Context, delay time.Duration, maxCount *int, update, ignoreCache bool) ([]OutcomeSummary, error) {
	links, err := s.discover(ctx, ignoreCache)
	if err != nil {
		return nil, err
	}

	if !update {
		links, err = s.filterIngested(ctx, links)
		if err != nil {
			return nil, err
		}
	}
	if maxCount != nil && *maxCount >= 0 && len(links) > *maxCount {
		links = links[:*maxCount]
	}

	log.Info().
		Int("count", len(links)).
		Dur("delay", delay).
		Bool("update", update).
		Msg("starting ingestion batch")

	summaries := make([]OutcomeSummary, 0, len(links))
	for i, link := range links {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return summaries, ctx.Err()
			case <-time.After(delay):
			}
		}

		summary, err := s.FetchAndUpsertReview(ctx, link, ignoreCache)
		if err != nil {
			log.Error().Err(err).Str("link", link).Int("position", i).Msg("batch aborted")
			return summaries, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// discover loads the index page and returns the absolute link of every
// chronicle it lists.
func (s *IngestService) discover(ctx context.Context, ignoreCache bool) ([]string, error) {
	doc, err := s.Loader.Load(ctx, s.IndexURL, scrape.DeriveCacheKey(s.IndexURL), s.PageTTL, ignoreCache)
	if err != nil {
		return nil, err
	}

	hrefs := s.Extractor.ChronicleLinks(doc)
	if len(hrefs) == 0 {
		return nil, ErrNoLinks
	}

	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		links = append(links, s.Extractor.AbsoluteURL(href))
	}
	return links, nil
}

// filterIngested drops the links already stored, preserving index order.
func (s *IngestService) filterIngested(ctx context.Context, links []string) ([]string, error) {
	stored, err := repo.ListReviewLinks(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(stored))
	for _, l := range stored {
		seen[l] = struct{}{}
	}

	out := links[:0]
	for _, l := range links {
		if _, ok := seen[l]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func summarize(r *domain.Review) *OutcomeSummary {
	outcome := OutcomeUpdated
	if r.Inserted() {
		outcome = OutcomeInserted
	}
	return &OutcomeSummary{
		ID:            r.ID,
		Link:          r.Link,
		Title:         r.Title,
		ReleaseYear:   r.ReleaseYear,
		AverageRating: r.AverageRating,
		Outcome:       outcome,
	}
}
