// Package main provides the collection explorer API server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ozcamlab/museum-explorer-go/internal/assistant"
	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
	"github.com/ozcamlab/museum-explorer-go/internal/config"
	"github.com/ozcamlab/museum-explorer-go/internal/geocode"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
	"github.com/ozcamlab/museum-explorer-go/internal/namelookup"
	"github.com/ozcamlab/museum-explorer-go/internal/sentry"
	"github.com/ozcamlab/museum-explorer-go/internal/storage"
	"github.com/ozcamlab/museum-explorer-go/internal/taxon"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Museum Explorer Server")

	// Initialize Sentry (disabled when no DSN is configured)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry initialized")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to the session store
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Name lookup client feeds both the fallback coordinator and the
	// generic-term resolver.
	lookupClient := namelookup.NewClient(cfg.NameLookupBaseURL, cfg.LookupTimeout, cfg.CacheTTL, log, m)
	resolver := taxon.NewResolver(lookupClient, log)

	// Occurrence search stack
	searchClient := biocache.NewClient(cfg.BiocacheBaseURL, cfg.SearchTimeout, log)
	builder := &biocache.QueryBuilder{
		DatasetID: cfg.DatasetID,
		UIBaseURL: cfg.BiocacheUIBaseURL,
	}
	searchService := biocache.NewService(searchClient, builder, lookupClient, resolver, log, m)
	log.WithField("dataset", cfg.DatasetID).Info("Search service created")

	// Geocoding client (optional)
	var geocoder assistant.Geocoder
	if cfg.HasGeocoding() {
		geocoder = geocode.NewClient(cfg.GoogleGeocodingAPIKey, cfg.LookupTimeout, cfg.CacheTTL, log, m)
		log.Info("Geocoding enabled")
	} else {
		log.Info("Geocoding API key not configured, place search degrades to locality matching")
	}

	// Conversational assistant (optional)
	var chat *assistant.Service
	if cfg.HasAssistant() {
		chat = assistant.NewService(cfg.OpenAIAPIKey, cfg.OpenAIModel, searchService, geocoder,
			db, cfg.BiocacheUIBaseURL, cfg.MaxHistory, log, m)
		log.WithField("model", cfg.OpenAIModel).Info("Assistant enabled")
	} else {
		log.Info("OpenAI API key not configured, assistant disabled")
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	api := newAPI(searchService, chat, log, m)
	setupRoutes(router, api, db, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SearchTimeout + 30*time.Second, // chat turns can run several searches
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
