// Package assistant implements the conversational interface over the
// specimen collection: an LLM with function-calling access to the
// occurrence search, backed by persistent per-session history.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
	"github.com/ozcamlab/museum-explorer-go/internal/geocode"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
	"github.com/ozcamlab/museum-explorer-go/internal/storage"
)

const systemPrompt = `You are an AI assistant for the Australian Museum Collection Explorer.
You help users learn about museum specimens from the OZCAM dataset.

You have access to the Australian Museum's OZCAM specimen dataset through the Atlas of Living Australia (ALA) Biocache API.
When users ask questions about specimens, species occurrences, or collection data, you can search the actual dataset.

Important guidelines:
- Use the search_specimens function when users ask about specific species, locations, time periods, or collection information
- All specimen data you provide MUST come from actual ALA queries - never make up specimen information
- Be clear when no data is found for a query
- You can combine multiple searches to answer complex questions
- Provide interesting facts and educational context alongside the data

Be friendly, informative, and educational. Answer in a maximum of 3 sentences unless providing detailed specimen data.`

// Geocoder resolves a place name to Australian coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string, opts Options) ([]geocode.Match, error)
}

// Options aliases the geocoding options so Geocoder implementations share
// one type.
type Options = geocode.Options

// Reply is the assistant's answer to one chat message.
type Reply struct {
	Response    string   `json:"response"`
	SessionID   string   `json:"session_id"`
	Type        string   `json:"type"`
	Suggestions []string `json:"suggestions"`
}

// HistoryEntry is one displayable conversation turn.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service runs the tool-calling conversation loop.
type Service struct {
	client     openai.Client
	model      string
	tools      []openai.ChatCompletionToolUnionParam
	search     *biocache.Service
	geocoder   Geocoder
	store      *storage.DB
	cleaner    *Cleaner
	log        *logger.Logger
	metrics    *metrics.Metrics
	maxHistory int
}

// NewService creates the assistant. geocoder may be nil, in which case
// place arguments fall back to locality text matching.
func NewService(apiKey, model string, search *biocache.Service, geocoder Geocoder, store *storage.DB, uiBaseURL string, maxHistory int, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		tools:      buildTools(),
		search:     search,
		geocoder:   geocoder,
		store:      store,
		cleaner:    NewCleaner(uiBaseURL),
		log:        log.WithModule("assistant"),
		metrics:    m,
		maxHistory: maxHistory,
	}
}

// Chat processes one user message within a session: prior history is
// replayed for context, the model may call the search tools, and the final
// answer is cleaned of any tool leakage before being persisted and returned.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	start := time.Now()
	reply, err := s.chat(ctx, sessionID, message)
	if s.metrics != nil {
		s.metrics.ChatDurationSeconds.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.ChatRequestsTotal.WithLabelValues(status).Inc()
	}
	return reply, err
}

func (s *Service) chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, msg := range history {
		// Tool-call turns are persisted for audit but not replayed; the
		// model only needs the conversational turns for context.
		if msg.ToolName != "" || msg.ToolCallID != "" || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case "user":
			messages = append(messages, openai.UserMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	if err := s.store.AppendMessage(ctx, sessionID, storage.Message{Role: "user", Content: message}); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
		Tools:    s.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(openai.ChatCompletionToolChoiceOptionAutoAuto)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	choice := resp.Choices[0].Message
	content := choice.Content
	responseType := "text_response"
	var toolPayloads []string

	if len(choice.ToolCalls) > 0 {
		messages = append(messages, choice.ToParam())

		for _, tc := range choice.ToolCalls {
			if tc.Type != "function" {
				continue
			}
			s.log.WithFields(map[string]any{
				"tool": tc.Function.Name,
				"args": tc.Function.Arguments,
			}).Info("Executing tool call")

			payload := s.executeTool(ctx, tc.Function.Name, tc.Function.Arguments)
			toolPayloads = append(toolPayloads, payload)
			messages = append(messages, openai.ToolMessage(payload, tc.ID))

			s.persistToolTurns(ctx, sessionID, tc.Function.Name, tc.Function.Arguments, tc.ID, payload)
		}

		final, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    s.model,
			Messages: messages,
		})
		if err != nil {
			return nil, fmt.Errorf("final completion failed: %w", err)
		}
		if len(final.Choices) == 0 {
			return nil, errors.New("empty final response from model")
		}
		content = final.Choices[0].Message.Content
		responseType = "data_response"
	}

	cleaned := s.cleaner.Clean(content, toolPayloads)
	if cleaned != content && s.metrics != nil {
		s.metrics.ResponsesCleanedTotal.Inc()
	}

	if err := s.store.AppendMessage(ctx, sessionID, storage.Message{Role: "assistant", Content: cleaned}); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	if err := s.store.Trim(ctx, sessionID, s.maxHistory); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to trim session history")
	}

	return &Reply{
		Response:    cleaned,
		SessionID:   sessionID,
		Type:        responseType,
		Suggestions: ContextualSuggestions(),
	}, nil
}

// History returns the displayable turns of a session, skipping tool
// plumbing.
func (s *Service) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	stored, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(stored))
	for _, msg := range stored {
		if msg.ToolName != "" || msg.ToolCallID != "" || msg.Content == "" {
			continue
		}
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		entries = append(entries, HistoryEntry{Role: msg.Role, Content: msg.Content})
	}
	return entries, nil
}

// Clear deletes a session's history.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

func (s *Service) persistToolTurns(ctx context.Context, sessionID, toolName, args, callID, payload string) {
	if err := s.store.AppendMessage(ctx, sessionID, storage.Message{
		Role:       "assistant",
		ToolCallID: callID,
		ToolName:   toolName,
		ToolArgs:   args,
	}); err != nil {
		s.log.WithError(err).Warn("Failed to persist tool call")
	}
	if err := s.store.AppendMessage(ctx, sessionID, storage.Message{
		Role:       "tool",
		Content:    payload,
		ToolCallID: callID,
		ToolName:   toolName,
	}); err != nil {
		s.log.WithError(err).Warn("Failed to persist tool result")
	}
}

// executeTool runs one tool call and returns its JSON payload. Failures are
// embedded in the payload so the model can explain them; they are never
// surfaced as chat errors.
func (s *Service) executeTool(ctx context.Context, name, rawArgs string) string {
	var (
		payload any
		failed  bool
	)
	switch name {
	case toolSearchSpecimens:
		payload, failed = s.runSearch(ctx, rawArgs)
	case toolStatistics:
		payload, failed = s.runStatistics(ctx, rawArgs)
	default:
		payload, failed = map[string]string{"error": fmt.Sprintf("Unknown function: %s", name)}, true
	}

	if s.metrics != nil {
		status := "success"
		if failed {
			status = "error"
		}
		s.metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"failed to encode tool result"}`
	}
	return string(out)
}

type specimenPayload struct {
	ScientificName string            `json:"scientific_name,omitempty"`
	CommonName     string            `json:"common_name,omitempty"`
	CatalogNumber  string            `json:"catalog_number,omitempty"`
	CollectionName string            `json:"collection_name,omitempty"`
	Location       locationPayload   `json:"location"`
	Date           string            `json:"date,omitempty"`
	Year           int               `json:"year,omitempty"`
	Institution    string            `json:"institution,omitempty"`
	BasisOfRecord  string            `json:"basis_of_record,omitempty"`
	Taxonomy       map[string]string `json:"taxonomic_info,omitempty"`
	HasImage       bool              `json:"has_image"`
	ImageURL       string            `json:"image_url,omitempty"`
}

type locationPayload struct {
	State       string   `json:"state,omitempty"`
	Locality    string   `json:"locality,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	SearchedFor string   `json:"searched_place,omitempty"`
}

type searchPayload struct {
	TotalRecords    int                              `json:"total_records"`
	ReturnedRecords int                              `json:"returned_records"`
	Specimens       []specimenPayload                `json:"specimens"`
	Facets          map[string][]biocache.FacetCount `json:"facets,omitempty"`
	ALAURL          string                           `json:"ala_url,omitempty"`
	Error           string                           `json:"error,omitempty"`
}

type statsPayload struct {
	TotalRecords  int                              `json:"total_records"`
	FacetedCounts map[string][]biocache.FacetCount `json:"faceted_counts"`
	ALAURL        string                           `json:"ala_url,omitempty"`
	Error         string                           `json:"error,omitempty"`
}

func (s *Service) runSearch(ctx context.Context, rawArgs string) (any, bool) {
	args, err := decodeSearchArgs(rawArgs)
	if err != nil {
		return searchPayload{Error: err.Error(), Specimens: []specimenPayload{}}, true
	}

	fs := args.filterSet()
	place := s.applyPlace(ctx, &fs, args.Place)

	result, err := s.search.Search(ctx, fs, biocache.SearchOptions{PageSize: args.Limit})
	if err != nil {
		return searchPayload{
			Error:     fmt.Sprintf("Error searching specimens: %v", err),
			Specimens: []specimenPayload{},
		}, true
	}

	specimens := make([]specimenPayload, 0, len(result.Records))
	for i := range result.Records {
		occ := &result.Records[i]
		sp := specimenPayload{
			ScientificName: occ.ScientificName,
			CommonName:     occ.CommonName,
			CatalogNumber:  occ.CatalogNumber,
			CollectionName: occ.CollectionName,
			Location: locationPayload{
				State:       occ.StateProvince,
				Locality:    occ.Locality,
				Latitude:    occ.Latitude,
				Longitude:   occ.Longitude,
				SearchedFor: place,
			},
			Date:          occ.EventDate,
			Year:          occ.Year,
			Institution:   occ.InstitutionName,
			BasisOfRecord: occ.BasisOfRecord,
			HasImage:      occ.HasImage(),
			ImageURL:      occ.ThumbnailURL,
		}
		if occ.Family != "" || occ.Order != "" || occ.Class != "" {
			sp.Taxonomy = map[string]string{
				"family": occ.Family,
				"order":  occ.Order,
				"class":  occ.Class,
			}
		}
		specimens = append(specimens, sp)
	}

	return searchPayload{
		TotalRecords:    result.TotalCount,
		ReturnedRecords: len(specimens),
		Specimens:       specimens,
		Facets:          result.Facets,
		ALAURL:          result.DeepLinkURL,
	}, false
}

func (s *Service) runStatistics(ctx context.Context, rawArgs string) (any, bool) {
	args, err := decodeStatsArgs(rawArgs)
	if err != nil {
		return statsPayload{Error: err.Error(), FacetedCounts: map[string][]biocache.FacetCount{}}, true
	}

	result, err := s.search.Statistics(ctx, args.filterSet())
	if err != nil {
		return statsPayload{
			Error:         fmt.Sprintf("Error getting statistics: %v", err),
			FacetedCounts: map[string][]biocache.FacetCount{},
		}, true
	}

	return statsPayload{
		TotalRecords:  result.TotalCount,
		FacetedCounts: result.Facets,
		ALAURL:        result.DeepLinkURL,
	}, false
}

// applyPlace geocodes a place argument into a spatial filter: a state
// filter for state-sized places, a point-radius otherwise. When geocoding
// is unavailable or fails, the place degrades to a locality text match.
// Returns the place name when it was used, for echoing in results.
func (s *Service) applyPlace(ctx context.Context, fs *biocache.FilterSet, place string) string {
	if place == "" {
		return ""
	}
	if s.geocoder == nil {
		fs.Locality = place
		return place
	}

	matches, err := s.geocoder.Geocode(ctx, place, Options{BiasToAustralia: true})
	if err != nil || len(matches) == 0 {
		s.log.WithField("place", place).Debug("Geocoding unavailable, using locality text match")
		fs.Locality = place
		return place
	}

	m := matches[0]
	if geocode.UseStateFilter(m.PlaceType) && m.State != "" {
		fs.StateProvince = m.State
		return place
	}
	fs.Radius = &biocache.RadiusSearch{
		Lat:      m.Latitude,
		Lon:      m.Longitude,
		RadiusKm: geocode.RadiusKm(m.PlaceType),
	}
	return place
}
