// Command server runs the review-ingestion backend: it opens the SQLite
// store and the Badger cache, prepares the poster directory and the headless
// browser, and serves the HTTP API until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mbreban/nanarbase/internal/assets"
	"github.com/mbreban/nanarbase/internal/browser"
	"github.com/mbreban/nanarbase/internal/cache"
	"github.com/mbreban/nanarbase/internal/config"
	httpapi "github.com/mbreban/nanarbase/internal/http"
	"github.com/mbreban/nanarbase/internal/repo"
	"github.com/mbreban/nanarbase/internal/scrape"
	"github.com/mbreban/nanarbase/internal/services"
	"github.com/mbreban/nanarbase/internal/sysutil"
	"github.com/mbreban/nanarbase/internal/tmdb"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	kv, err := cache.Open(cfg.CacheDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("open cache")
	}
	defer kv.Close()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	posters, err := assets.NewStore(cfg.PosterDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.PosterDir).Msg("open poster store")
	}

	br := browser.New(cfg.Scrape.ChromePath, cfg.Scrape.RenderTimeout)
	defer br.Release()

	var movies *tmdb.Client
	if cfg.TMDB.Token != "" {
		movies = tmdb.New(cfg.TMDB.BaseURL, cfg.TMDB.Token, cfg.TMDB.Language.String(), cfg.TMDB.TTL, kv)
	} else {
		log.Warn().Msg("TMDB_TOKEN not set; reviews will be stored without movie ids")
	}

	loader := scrape.NewLoader(br, kv)
	extractor := scrape.NewExtractor(cfg.Scrape.BaseURL)

	// A nil *tmdb.Client must stay an untyped nil inside the service
	// interfaces, so the disabled-provider checks keep working.
	var resolver services.MovieResolver
	var searcher services.MovieSearcher
	if movies != nil {
		resolver = movies
		searcher = movies
	}
	reconciler := services.NewReconciler(db, posters, resolver)
	ingest := services.NewIngestService(db, loader, extractor, reconciler,
		cfg.Scrape.BaseURL+cfg.Scrape.IndexPath, cfg.Scrape.PageTTL)
	reviews := services.NewReviewService(db, posters)

	svcs := httpapi.Services{
		Ingest:  ingest,
		Reviews: reviews,
		Movies:  services.NewMovieService(searcher),
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, svcs, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
