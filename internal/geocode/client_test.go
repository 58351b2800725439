package geocode

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	domerrors "github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

const geocodeFixture = `{
	"status": "OK",
	"results": [
		{
			"formatted_address": "Castle Hill NSW 2154, Australia",
			"types": ["locality", "political"],
			"geometry": {
				"location": {"lat": -33.7333, "lng": 151.0},
				"viewport": {
					"northeast": {"lat": -33.71, "lng": 151.02},
					"southwest": {"lat": -33.75, "lng": 150.98}
				}
			}
		},
		{
			"formatted_address": "Castle Hill, Townsville QLD, Australia",
			"types": ["natural_feature"],
			"geometry": {"location": {"lat": -19.2444, "lng": 146.8}}
		},
		{
			"formatted_address": "Castle Hill, NY, USA",
			"types": ["neighborhood"],
			"geometry": {"location": {"lat": 40.8189, "lng": -73.85}}
		}
	]
}`

func newTestClient(t *testing.T, apiKey string) *Client {
	t.Helper()
	client := NewClient(apiKey, 5*time.Second, time.Hour,
		logger.NewWithWriter("error", io.Discard), nil)
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestGeocodeKeepsAustralianMatchesOnly(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder("GET", endpoint,
		httpmock.NewStringResponder(200, geocodeFixture))

	matches, err := client.Geocode(context.Background(), "Castle Hill", Options{AllMatches: true})
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Geocode() returned %d matches, want 2 (US match dropped)", len(matches))
	}

	first := matches[0]
	if first.Latitude != -33.7333 || first.Longitude != 151.0 {
		t.Errorf("primary match at (%v, %v), want (-33.7333, 151.0)", first.Latitude, first.Longitude)
	}
	if first.PlaceType != "locality" {
		t.Errorf("PlaceType = %q, want locality", first.PlaceType)
	}
	if first.State != "New South Wales" {
		t.Errorf("State = %q, want New South Wales", first.State)
	}
	if first.Bounds == nil || first.Bounds.North != -33.71 || first.Bounds.West != 150.98 {
		t.Errorf("Bounds = %+v, want viewport box", first.Bounds)
	}
	if matches[1].State != "Queensland" {
		t.Errorf("second match State = %q, want Queensland", matches[1].State)
	}
}

func TestGeocodePrimaryMatchOnly(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder("GET", endpoint,
		httpmock.NewStringResponder(200, geocodeFixture))

	matches, err := client.Geocode(context.Background(), "Castle Hill", Options{})
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Geocode() returned %d matches, want 1", len(matches))
	}
}

func TestGeocodeCaching(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder("GET", endpoint,
		httpmock.NewStringResponder(200, geocodeFixture))

	for range 3 {
		if _, err := client.Geocode(context.Background(), "Castle Hill", Options{}); err != nil {
			t.Fatalf("Geocode() error = %v", err)
		}
	}
	if calls := httpmock.GetTotalCallCount(); calls != 1 {
		t.Errorf("made %d upstream calls, want 1 (cache hit)", calls)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder("GET", endpoint,
		httpmock.NewStringResponder(200, `{"status": "ZERO_RESULTS", "results": []}`))

	_, err := client.Geocode(context.Background(), "xyzzy", Options{})
	if !errors.Is(err, domerrors.ErrNoResolution) {
		t.Errorf("Geocode() error = %v, want ErrNoResolution", err)
	}
}

func TestGeocodeAPIErrorStatus(t *testing.T) {
	client := newTestClient(t, "test-key")
	httpmock.RegisterResponder("GET", endpoint,
		httpmock.NewStringResponder(200, `{"status": "REQUEST_DENIED", "results": []}`))

	_, err := client.Geocode(context.Background(), "Sydney", Options{})
	if !domerrors.IsUpstream(err) {
		t.Errorf("Geocode() error = %v, want *errors.UpstreamError", err)
	}
}

func TestGeocodeWithoutAPIKey(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.Geocode(context.Background(), "Sydney", Options{})
	if !errors.Is(err, domerrors.ErrNoResolution) {
		t.Errorf("Geocode() error = %v, want ErrNoResolution", err)
	}
	if calls := httpmock.GetTotalCallCount(); calls != 0 {
		t.Errorf("made %d upstream calls, want 0", calls)
	}
}

func TestRadiusKm(t *testing.T) {
	tests := []struct {
		placeType string
		want      float64
	}{
		{"locality", 5},
		{"sublocality", 3},
		{"administrative_area_level_2", 20},
		{"route", 2},
		{"natural_feature", 10},
		{"unknown", 10},
	}
	for _, tt := range tests {
		if got := RadiusKm(tt.placeType); got != tt.want {
			t.Errorf("RadiusKm(%q) = %v, want %v", tt.placeType, got, tt.want)
		}
	}
}

func TestUseStateFilter(t *testing.T) {
	if !UseStateFilter("administrative_area_level_1") {
		t.Error("UseStateFilter(administrative_area_level_1) = false, want true")
	}
	if !UseStateFilter("country") {
		t.Error("UseStateFilter(country) = false, want true")
	}
	if UseStateFilter("locality") {
		t.Error("UseStateFilter(locality) = true, want false")
	}
}

func TestExtractState(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"Castle Hill NSW 2154, Australia", "New South Wales"},
		{"Perth WA 6000, Australia", "Western Australia"},
		{"Adelaide, South Australia, Australia", "South Australia"},
		{"Hobart TAS 7000, Australia", "Tasmania"},
		// "SA" must not match inside "Tasmania" or "NSW".
		{"Launceston, Tasmania, Australia", "Tasmania"},
		{"Somewhere, Australia", ""},
	}
	for _, tt := range tests {
		if got := extractState(tt.address); got != tt.want {
			t.Errorf("extractState(%q) = %q, want %q", tt.address, got, tt.want)
		}
	}
}
