// Package main provides the collection explorer API server entry point.
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ozcamlab/museum-explorer-go/internal/assistant"
	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
	"github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
	"github.com/ozcamlab/museum-explorer-go/internal/sentry"
)

// api holds the services behind the HTTP handlers.
type api struct {
	search  *biocache.Service
	chat    *assistant.Service
	log     *logger.Logger
	metrics *metrics.Metrics
}

func newAPI(search *biocache.Service, chat *assistant.Service, log *logger.Logger, m *metrics.Metrics) *api {
	return &api{
		search:  search,
		chat:    chat,
		log:     log.WithModule("api"),
		metrics: m,
	}
}

// handleOccurrences runs an occurrence search from query parameters.
func (a *api) handleOccurrences(c *gin.Context) {
	fs := biocache.FilterSet{
		ScientificName: c.Query("scientificName"),
		CommonName:     c.Query("commonName"),
		CollectionName: c.Query("collectionName"),
		StateProvince:  c.Query("stateProvince"),
		Year:           intQuery(c, "year", 0),
	}

	// Viewport bounds require all four edges.
	if hasAll(c, "north", "south", "east", "west") {
		fs.Bounds = &biocache.Bounds{
			North: floatQuery(c, "north"),
			South: floatQuery(c, "south"),
			East:  floatQuery(c, "east"),
			West:  floatQuery(c, "west"),
		}
	}

	// Point-radius spatial search.
	if hasAll(c, "lat", "lon") {
		fs.Radius = &biocache.RadiusSearch{
			Lat:      floatQuery(c, "lat"),
			Lon:      floatQuery(c, "lon"),
			RadiusKm: floatQuery(c, "radius"),
		}
	}

	opts := biocache.SearchOptions{
		Page:               intQuery(c, "page", 0),
		PageSize:           intQuery(c, "pageSize", 500),
		RequireImages:      boolQuery(c, "showOnlyWithImages", true),
		RequireCoordinates: fs.Bounds != nil,
	}

	result, err := a.search.Search(c.Request.Context(), fs, opts)
	if err != nil {
		a.respondError(c, "/api/occurrences", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleStatistics returns facet breakdowns without records.
func (a *api) handleStatistics(c *gin.Context) {
	fs := biocache.FilterSet{
		ScientificName: c.Query("scientificName"),
		StateProvince:  c.Query("stateProvince"),
	}

	result, err := a.search.Statistics(c.Request.Context(), fs)
	if err != nil {
		a.respondError(c, "/api/statistics", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// handleChat processes one conversational turn.
func (a *api) handleChat(c *gin.Context) {
	if a.chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "assistant is not configured",
		})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "a message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := a.chat.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		a.recordError(c, "/api/chat", err)
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"response":    "I apologize, but I encountered an error. Please try again.",
			"session_id":  req.SessionID,
			"suggestions": assistant.DefaultSuggestions(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"response":    reply.Response,
		"session_id":  reply.SessionID,
		"type":        reply.Type,
		"suggestions": reply.Suggestions,
	})
}

func (a *api) handleSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"suggestions": assistant.DefaultSuggestions(),
	})
}

func (a *api) handleChatClear(c *gin.Context) {
	if a.chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "assistant is not configured"})
		return
	}

	var req chatRequest
	_ = c.ShouldBindJSON(&req)
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "a session_id is required"})
		return
	}

	if err := a.chat.Clear(c.Request.Context(), req.SessionID); err != nil {
		if stderrors.Is(err, errors.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "session not found"})
			return
		}
		a.respondError(c, "/api/chat/clear", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Conversation history cleared",
		"session_id": req.SessionID,
	})
}

func (a *api) handleChatHistory(c *gin.Context) {
	if a.chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "assistant is not configured"})
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "a session_id is required"})
		return
	}

	history, err := a.chat.History(c.Request.Context(), sessionID)
	if err != nil {
		a.respondError(c, "/api/chat/history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"history":       history,
		"session_id":    sessionID,
		"message_count": len(history),
	})
}

// respondError maps a service error to an HTTP status.
func (a *api) respondError(c *gin.Context, route string, err error) {
	a.recordError(c, route, err)

	var verr *errors.ValidationError
	switch {
	case stderrors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.IsUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream search service unavailable"})
	case stderrors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "search timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (a *api) recordError(c *gin.Context, route string, err error) {
	a.log.WithError(err).WithField("route", route).Error("Request handler failed")

	errorType := "internal"
	var verr *errors.ValidationError
	switch {
	case stderrors.As(err, &verr):
		errorType = "validation"
	case errors.IsUpstream(err):
		errorType = "upstream"
	case stderrors.Is(err, context.DeadlineExceeded):
		errorType = "timeout"
	}
	if a.metrics != nil {
		a.metrics.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
	}
	if errorType == "internal" {
		sentry.CaptureException(err)
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func floatQuery(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.Query(key), 64)
	return v
}

func boolQuery(c *gin.Context, key string, fallback bool) bool {
	switch c.Query(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func hasAll(c *gin.Context, keys ...string) bool {
	for _, key := range keys {
		if _, ok := c.GetQuery(key); !ok {
			return false
		}
	}
	return true
}
