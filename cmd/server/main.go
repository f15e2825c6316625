package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/setgraph/enricher/internal/app"
	"github.com/setgraph/enricher/internal/artistdb"
	"github.com/setgraph/enricher/internal/config"
	"github.com/setgraph/enricher/internal/domain"
	"github.com/setgraph/enricher/internal/enrich"
	"github.com/setgraph/enricher/internal/filetags"
	"github.com/setgraph/enricher/internal/handlers"
	"github.com/setgraph/enricher/internal/label"
	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/metrics"
	"github.com/setgraph/enricher/internal/profile"
	"github.com/setgraph/enricher/internal/providers"
	"github.com/setgraph/enricher/internal/store"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Metrics
	registry := metrics.NewRegistry()

	// Initialize Providers
	spotify := providers.NewSpotifyClient(cfg.SpotifyURL, cfg.SpotifyToken, nil)
	musicbrainz := providers.NewMusicBrainzClient(cfg.MusicBrainzURL, nil)
	beatport := providers.NewBeatportClient(cfg.BeatportURL, nil)
	juno := providers.NewJunoClient(cfg.JunoURL, nil)
	traxsource := providers.NewTraxsourceClient(cfg.TraxsourceURL, nil)
	fileTags := filetags.NewClient(cfg.AudioDir, appLogger)

	providerRegistry := providers.NewRegistry()
	for _, c := range []providers.Client{spotify, musicbrainz, beatport, juno, traxsource, fileTags} {
		if err := providerRegistry.Register(c); err != nil {
			appLogger.Error("Failed to register provider", "error", err)
			os.Exit(1)
		}
	}

	// Initialize enrichment config (initial load must succeed)
	loaderCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	loader, err := enrich.NewConfigLoader(loaderCtx, db, cfg.ConfigTTL, appLogger)
	cancelLoad()
	if err != nil {
		appLogger.Error("Failed to load enrichment config", "error", err)
		os.Exit(1)
	}

	// Initialize Enrichment Core
	scorer := enrich.NewScorer(enrich.DefaultScorerConfig())
	enricher := enrich.NewEnricher(loader, providerRegistry, enrich.DefaultExtractors(),
		scorer, registry, cfg.ProviderCallTimeout, appLogger)

	hunter := label.NewHunter(musicbrainz, []label.StoreSearcher{
		{Source: domain.LabelSourceBeatport, Searcher: beatport},
		{Source: domain.LabelSourceJuno, Searcher: juno},
		{Source: domain.LabelSourceTraxsource, Searcher: traxsource},
	}, registry, appLogger)

	profiler := profile.NewProfiler(db, profile.MatchSubstring, appLogger)
	populator := artistdb.NewPopulator(db, registry, appLogger)
	pipeline := app.NewPipeline(hunter, enricher, populator, profiler, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(pipeline, hunter, profiler, populator, registry, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
