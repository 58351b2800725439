// Package main provides the collection explorer API server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ozcamlab/museum-explorer-go/internal/config"
	"github.com/ozcamlab/museum-explorer-go/internal/storage"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, api *api, db *storage.DB, registry *prometheus.Registry, cfg *config.Config) {
	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "museum-explorer-api"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Occurrence search API
	group := router.Group("/api")
	group.GET("/occurrences", api.handleOccurrences)
	group.GET("/statistics", api.handleStatistics)

	// Conversational assistant API
	group.POST("/chat", api.handleChat)
	group.GET("/chat/suggestions", api.handleSuggestions)
	group.POST("/chat/clear", api.handleChatClear)
	group.GET("/chat/history", api.handleChatHistory)

	// Prometheus metrics endpoint, behind basic auth when a password is set
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
