// Package geocode converts Australian place names to coordinates via the
// Google Geocoding API so location terms in conversation ("around Castle
// Hill") can become spatial occurrence filters.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
	"github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
)

const (
	serviceName = "geocode"
	endpoint    = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Options control one geocode request.
type Options struct {
	// BiasToAustralia appends ", Australia" to the query and restricts
	// component matching to AU.
	BiasToAustralia bool
	// AllMatches returns every Australian match instead of just the primary
	// one, so ambiguous place names ("Springfield") can be surfaced back to
	// the user.
	AllMatches bool
}

// Match is one geocoded Australian location.
type Match struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	PlaceType        string
	State            string
	Bounds           *biocache.Bounds
}

type apiResponse struct {
	Status  string      `json:"status"`
	Results []apiResult `json:"results"`
}

type apiResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location apiPoint `json:"location"`
		Bounds   *apiBox  `json:"bounds"`
		Viewport *apiBox  `json:"viewport"`
	} `json:"geometry"`
}

type apiPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type apiBox struct {
	Northeast apiPoint `json:"northeast"`
	Southwest apiPoint `json:"southwest"`
}

// Client geocodes place names. Results are cached; place-name coordinates
// do not change and the API is billed per call.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      *gocache.Cache
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a geocoding client. An empty apiKey produces a client
// whose Geocode always fails with errors.ErrNoResolution.
func NewClient(apiKey string, timeout, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    endpoint,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		log:        log.WithModule("geocode"),
		metrics:    m,
	}
}

// Geocode resolves a place name to coordinates, keeping only Australian
// matches. Returns errors.ErrNoResolution when nothing matched.
func (c *Client) Geocode(ctx context.Context, location string, opts Options) ([]Match, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("geocoding not configured: %w", errors.ErrNoResolution)
	}

	key := fmt.Sprintf("%s|%t|%t", strings.ToLower(strings.TrimSpace(location)), opts.BiasToAustralia, opts.AllMatches)
	if cached, found := c.cache.Get(key); found {
		if c.metrics != nil {
			c.metrics.GeocodeCacheHitsTotal.Inc()
		}
		return cached.([]Match), nil
	}
	if c.metrics != nil {
		c.metrics.GeocodeCacheMissesTotal.Inc()
	}

	query := location
	if opts.BiasToAustralia {
		query = location + ", Australia"
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)
	params.Set("region", "au")
	params.Set("components", "country:AU")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError(serviceName, c.baseURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(serviceName, c.baseURL, resp.StatusCode,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.NewUpstreamError(serviceName, c.baseURL, resp.StatusCode,
			fmt.Errorf("failed to decode response: %w", err))
	}

	switch raw.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, fmt.Errorf("no geocoding results for %q: %w", location, errors.ErrNoResolution)
	default:
		return nil, errors.NewUpstreamError(serviceName, c.baseURL, resp.StatusCode,
			fmt.Errorf("geocoding API status %s", raw.Status))
	}

	matches := make([]Match, 0, len(raw.Results))
	for _, r := range raw.Results {
		// The AU component filter still lets through near matches abroad.
		if !strings.Contains(r.FormattedAddress, "Australia") {
			continue
		}
		matches = append(matches, Match{
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
			FormattedAddress: r.FormattedAddress,
			PlaceType:        placeType(r.Types),
			State:            extractState(r.FormattedAddress),
			Bounds:           boundingBox(r),
		})
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no Australian results for %q: %w", location, errors.ErrNoResolution)
	}

	c.log.WithFields(map[string]any{
		"location": location,
		"matches":  len(matches),
		"primary":  matches[0].FormattedAddress,
	}).Debug("Geocoded location")

	if !opts.AllMatches {
		matches = matches[:1]
	}
	c.cache.Set(key, matches, gocache.DefaultExpiration)
	return matches, nil
}

// radiusByPlaceType maps a Google place type to a search radius suited to
// the size of that kind of place.
var radiusByPlaceType = map[string]float64{
	"locality":                    5,
	"sublocality":                 3,
	"sublocality_level_1":         3,
	"postal_code":                 5,
	"administrative_area_level_2": 20,
	"administrative_area_level_1": 50,
	"colloquial_area":             10,
	"neighborhood":                3,
	"route":                       2,
}

// RadiusKm returns the point-radius to search around a place of the given
// type, defaulting to 10km for unknown types.
func RadiusKm(placeType string) float64 {
	if r, ok := radiusByPlaceType[placeType]; ok {
		return r
	}
	return 10
}

// UseStateFilter reports whether a place is too large for point-radius
// search and should be filtered by state instead.
func UseStateFilter(placeType string) bool {
	return placeType == "administrative_area_level_1" || placeType == "country"
}

var stateAbbreviations = map[string]string{
	"NSW": "New South Wales",
	"VIC": "Victoria",
	"QLD": "Queensland",
	"SA":  "South Australia",
	"WA":  "Western Australia",
	"TAS": "Tasmania",
	"NT":  "Northern Territory",
	"ACT": "Australian Capital Territory",
}

// extractState pulls the state name out of a formatted address, e.g.
// "Castle Hill NSW 2154, Australia" yields "New South Wales".
func extractState(address string) string {
	for _, full := range stateAbbreviations {
		if strings.Contains(address, full) {
			return full
		}
	}
	// Abbreviations second: "WA" would otherwise shadow "Western Australia"
	// only by iteration order.
	for abbrev, full := range stateAbbreviations {
		if containsWord(address, abbrev) {
			return full
		}
	}
	return ""
}

// containsWord reports whether the abbreviation appears as its own token,
// so "SA" does not match inside "NSW" or "Tasmania".
func containsWord(s, word string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		if tok == word {
			return true
		}
	}
	return false
}

func placeType(types []string) string {
	if len(types) == 0 {
		return "unknown"
	}
	return types[0]
}

func boundingBox(r apiResult) *biocache.Bounds {
	box := r.Geometry.Bounds
	if box == nil {
		box = r.Geometry.Viewport
	}
	if box == nil {
		return nil
	}
	return &biocache.Bounds{
		North: box.Northeast.Lat,
		South: box.Southwest.Lat,
		East:  box.Northeast.Lng,
		West:  box.Southwest.Lng,
	}
}
