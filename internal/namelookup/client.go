// Package namelookup queries the external taxonomic name service used to
// translate between scientific and vernacular names, and to source ranked
// candidates for generic-term resolution.
package namelookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
	"github.com/ozcamlab/museum-explorer-go/internal/taxon"
)

const serviceName = "namelookup"

// nameLimit is how many candidates a single-name lookup asks for; the
// top-ranked usable entry wins.
const nameLimit = 5

// searchResponse mirrors the name service's search envelope.
type searchResponse struct {
	SearchResults struct {
		TotalRecords int         `json:"totalRecords"`
		Results      []rawResult `json:"results"`
	} `json:"searchResults"`
}

type rawResult struct {
	Name             string `json:"name"`
	ScientificName   string `json:"scientificName"`
	CommonNameSingle string `json:"commonNameSingle"`
	Rank             string `json:"rank"`
	Kingdom          string `json:"kingdom"`
	Phylum           string `json:"phylum"`
	Class            string `json:"class"`
	Order            string `json:"order"`
	Family           string `json:"family"`
	Genus            string `json:"genus"`
}

// Client queries the name service. Responses are cached because name
// resolutions are stable and the service is rate-sensitive; concurrent
// identical lookups are collapsed into one upstream call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
	group      singleflight.Group
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a name lookup client for the service at baseURL.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *Client {
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
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		log:     log.WithModule("namelookup"),
		metrics: m,
	}
}

// Candidates returns up to limit ranked animal-kingdom taxa matching the
// free-text query.
func (c *Client) Candidates(ctx context.Context, query string, limit int) ([]taxon.Candidate, error) {
	results, err := c.search(ctx, query, limit)
	if err != nil {
		c.count("candidates", "error")
		return nil, err
	}
	c.count("candidates", "success")

	candidates := make([]taxon.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, taxon.Candidate{
			ScientificName: r.scientificName(),
			VernacularName: r.CommonNameSingle,
			RankName:       r.Rank,
			Kingdom:        r.Kingdom,
			Phylum:         r.Phylum,
			Class:          r.Class,
			Order:          r.Order,
			Family:         r.Family,
			Genus:          r.Genus,
		})
	}
	return candidates, nil
}

// ScientificNameFor resolves a vernacular name to the scientific name of
// the top-ranked match. Returns errors.ErrNoResolution when the service has
// no match.
func (c *Client) ScientificNameFor(ctx context.Context, vernacular string) (string, error) {
	results, err := c.search(ctx, vernacular, nameLimit)
	if err != nil {
		c.count("scientific", "error")
		return "", err
	}
	for _, r := range results {
		if name := r.scientificName(); name != "" {
			c.count("scientific", "success")
			return name, nil
		}
	}
	c.count("scientific", "miss")
	return "", fmt.Errorf("no scientific name for %q: %w", vernacular, errors.ErrNoResolution)
}

// VernacularNameFor resolves a scientific name to a common name. The first
// candidate carrying one wins; most higher taxa have none, which is a miss,
// not an error.
func (c *Client) VernacularNameFor(ctx context.Context, scientific string) (string, error) {
	results, err := c.search(ctx, scientific, nameLimit)
	if err != nil {
		c.count("vernacular", "error")
		return "", err
	}
	for _, r := range results {
		if r.CommonNameSingle != "" {
			c.count("vernacular", "success")
			return r.CommonNameSingle, nil
		}
	}
	c.count("vernacular", "miss")
	return "", fmt.Errorf("no vernacular name for %q: %w", scientific, errors.ErrNoResolution)
}

// search runs one cached, deduplicated query against the name service.
func (c *Client) search(ctx context.Context, query string, limit int) ([]rawResult, error) {
	key := strings.ToLower(strings.TrimSpace(query)) + "|" + strconv.Itoa(limit)
	if cached, found := c.cache.Get(key); found {
		return cached.([]rawResult), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		results, err := c.fetch(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, results, gocache.DefaultExpiration)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]rawResult), nil
}

func (c *Client) fetch(ctx context.Context, query string, limit int) ([]rawResult, error) {
	searchURL := c.baseURL + "/search.json"

	params := url.Values{}
	params.Set("q", query)
	params.Add("fq", "idxtype:TAXON")
	params.Add("fq", "kingdom:Animalia")
	params.Set("pageSize", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError(serviceName, searchURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(serviceName, searchURL, resp.StatusCode,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var raw searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.NewUpstreamError(serviceName, searchURL, resp.StatusCode,
			fmt.Errorf("failed to decode response: %w", err))
	}

	c.log.WithFields(map[string]any{
		"query":   query,
		"matches": raw.SearchResults.TotalRecords,
	}).Debug("Name service lookup completed")

	return raw.SearchResults.Results, nil
}

func (c *Client) count(kind, status string) {
	if c.metrics != nil {
		c.metrics.NameLookupsTotal.WithLabelValues(kind, status).Inc()
	}
}

func (r rawResult) scientificName() string {
	if r.ScientificName != "" {
		return r.ScientificName
	}
	return r.Name
}
