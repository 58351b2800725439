package biocache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

const serviceName = "biocache"

// facetLimit caps the number of buckets returned per facet.
const facetLimit = 1000

// SearchRequest is one fully-assembled call to the occurrence engine.
type SearchRequest struct {
	Query         string
	FilterQueries []string
	Spatial       *RadiusSearch
	Page          int
	PageSize      int

	// Client-side post-filters, applied after retrieval. The engine cannot
	// reliably filter on all three image-URL fields at once, and generalized
	// coordinates can fall outside a requested viewport.
	Bounds             *Bounds
	RequireImages      bool
	RequireCoordinates bool
}

// SearchResponse is the reshaped engine response for one request.
type SearchResponse struct {
	TotalRecords int
	Records      []Occurrence
	Facets       map[string][]FacetCount
}

// Client executes occurrence searches against the upstream engine.
// Result sets can be large and faceted, so the timeout is generous.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient creates a search client for the engine at baseURL.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.WithModule("biocache"),
	}
}

// Execute runs one search. Non-2xx responses and transport failures are
// returned as *errors.UpstreamError so callers can distinguish them from a
// legitimate empty result.
func (c *Client) Execute(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	searchURL := c.baseURL + "/occurrences/search"

	params := url.Values{}
	params.Set("q", req.Query)
	for _, fq := range req.FilterQueries {
		params.Add("fq", fq)
	}
	params.Set("pageSize", strconv.Itoa(req.PageSize))
	params.Set("start", strconv.Itoa(req.Page*req.PageSize))
	params.Set("facets", strings.Join(facetFields, ","))
	params.Set("flimit", strconv.Itoa(facetLimit))
	params.Set("sort", "score")
	params.Set("dir", "desc")

	if s := req.Spatial; s != nil {
		params.Set("lat", trimFloat(s.Lat))
		params.Set("lon", trimFloat(s.Lon))
		if s.RadiusKm > 0 {
			params.Set("radius", trimFloat(s.RadiusKm))
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NewUpstreamError(serviceName, searchURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(serviceName, searchURL, resp.StatusCode,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var raw engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.NewUpstreamError(serviceName, searchURL, resp.StatusCode,
			fmt.Errorf("failed to decode response: %w", err))
	}

	records := make([]Occurrence, 0, len(raw.Occurrences))
	for i := range raw.Occurrences {
		occ := reshapeOccurrence(&raw.Occurrences[i])
		if !includeRecord(&occ, &req) {
			continue
		}
		records = append(records, occ)
	}

	c.log.WithFields(map[string]any{
		"total_records": raw.TotalRecords,
		"returned":      len(records),
		"filter_count":  len(req.FilterQueries),
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("Occurrence search completed")

	return &SearchResponse{
		TotalRecords: raw.TotalRecords,
		Records:      records,
		Facets:       reshapeFacets(raw.FacetResults),
	}, nil
}

// includeRecord applies the client-side post-filters for one record.
func includeRecord(occ *Occurrence, req *SearchRequest) bool {
	if req.Bounds != nil {
		if !occ.HasCoordinates() {
			return false
		}
		if !req.Bounds.Contains(*occ.Latitude, *occ.Longitude) {
			return false
		}
	}
	if req.RequireCoordinates && !occ.HasCoordinates() {
		return false
	}
	if req.RequireImages && !occ.HasImage() {
		return false
	}
	return true
}
