package assistant

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/ozcamlab/museum-explorer-go/internal/biocache"
	"github.com/ozcamlab/museum-explorer-go/internal/geocode"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

type stubGeocoder struct {
	matches []geocode.Match
	err     error
}

func (g *stubGeocoder) Geocode(_ context.Context, _ string, _ Options) ([]geocode.Match, error) {
	return g.matches, g.err
}

func placeService(g Geocoder) *Service {
	return &Service{
		geocoder: g,
		log:      logger.NewWithWriter("error", io.Discard),
	}
}

func TestApplyPlacePointRadius(t *testing.T) {
	svc := placeService(&stubGeocoder{matches: []geocode.Match{{
		Latitude:  -33.7333,
		Longitude: 151.0,
		PlaceType: "locality",
		State:     "New South Wales",
	}}})

	var fs biocache.FilterSet
	got := svc.applyPlace(context.Background(), &fs, "Castle Hill")
	if got != "Castle Hill" {
		t.Errorf("applyPlace() = %q, want place echoed back", got)
	}
	if fs.Radius == nil {
		t.Fatal("Radius = nil, want point-radius filter")
	}
	if fs.Radius.Lat != -33.7333 || fs.Radius.Lon != 151.0 || fs.Radius.RadiusKm != 5 {
		t.Errorf("Radius = %+v, want (-33.7333, 151.0, 5km)", fs.Radius)
	}
	if fs.StateProvince != "" || fs.Locality != "" {
		t.Errorf("unexpected extra filters: state=%q locality=%q", fs.StateProvince, fs.Locality)
	}
}

func TestApplyPlaceStateSizedPlace(t *testing.T) {
	svc := placeService(&stubGeocoder{matches: []geocode.Match{{
		Latitude:  -32.0,
		Longitude: 147.0,
		PlaceType: "administrative_area_level_1",
		State:     "New South Wales",
	}}})

	var fs biocache.FilterSet
	svc.applyPlace(context.Background(), &fs, "New South Wales")
	if fs.StateProvince != "New South Wales" {
		t.Errorf("StateProvince = %q, want New South Wales", fs.StateProvince)
	}
	if fs.Radius != nil {
		t.Errorf("Radius = %+v, want nil for state-sized place", fs.Radius)
	}
}

func TestApplyPlaceGeocodeFailureFallsBackToLocality(t *testing.T) {
	svc := placeService(&stubGeocoder{err: fmt.Errorf("upstream down")})

	var fs biocache.FilterSet
	svc.applyPlace(context.Background(), &fs, "Castle Hill")
	if fs.Locality != "Castle Hill" {
		t.Errorf("Locality = %q, want text-match fallback", fs.Locality)
	}
	if fs.Radius != nil || fs.StateProvince != "" {
		t.Errorf("unexpected spatial filters: radius=%+v state=%q", fs.Radius, fs.StateProvince)
	}
}

func TestApplyPlaceWithoutGeocoder(t *testing.T) {
	svc := placeService(nil)

	var fs biocache.FilterSet
	svc.applyPlace(context.Background(), &fs, "Castle Hill")
	if fs.Locality != "Castle Hill" {
		t.Errorf("Locality = %q, want text-match fallback", fs.Locality)
	}
}

func TestApplyPlaceEmpty(t *testing.T) {
	svc := placeService(&stubGeocoder{})

	var fs biocache.FilterSet
	if got := svc.applyPlace(context.Background(), &fs, ""); got != "" {
		t.Errorf("applyPlace() = %q, want empty", got)
	}
}
