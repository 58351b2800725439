// Package biocache implements occurrence searches against the upstream
// biodiversity search engine: translating a structured filter set into the
// engine's filter-query syntax, executing the search, and building the
// matching user-facing deep-link URL.
package biocache

import (
	"fmt"

	"github.com/ozcamlab/museum-explorer-go/internal/errors"
)

// Bounds is a geographic bounding box.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b *Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// YearRange is an inclusive year interval.
type YearRange struct {
	Start int `json:"start_year"`
	End   int `json:"end_year"`
}

// RadiusSearch is a point-plus-radius spatial query. It is not expressed as
// a filter-query clause; the engine takes it as separate query parameters.
type RadiusSearch struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius"`
}

// FilterSet is the canonical input to a search. All fields are optional.
// At most one of ScientificName/CommonName survives normalization; explicit
// higher-taxon fields take precedence over both.
type FilterSet struct {
	// Taxon identification
	ScientificName   string
	CommonName       string
	VernacularFilter string // substring narrowing from generic-term resolution

	// Explicit higher-taxon fields; bypass rank classification entirely
	Kingdom string
	Phylum  string
	Class   string
	Order   string
	Family  string
	Genus   string

	// Geography
	StateProvince string
	Locality      string
	Bounds        *Bounds
	Radius        *RadiusSearch

	// Time
	Year      int
	YearRange *YearRange
	Month     int
	Day       int

	// Specimen metadata
	CatalogNumber  string
	RecordedBy     string
	IdentifiedBy   string
	CollectionName string
	BasisOfRecord  string
	Institution    string

	// Media
	HasImage bool

	// Free-text main query (replaces the default *:* match-all)
	FreeText string
}

// Clone returns a deep copy. The fallback coordinator always retries with a
// fresh copy; mutating a FilterSet that has already been searched is how the
// two query representations drift apart.
func (fs *FilterSet) Clone() *FilterSet {
	dup := *fs
	if fs.Bounds != nil {
		b := *fs.Bounds
		dup.Bounds = &b
	}
	if fs.Radius != nil {
		r := *fs.Radius
		dup.Radius = &r
	}
	if fs.YearRange != nil {
		yr := *fs.YearRange
		dup.YearRange = &yr
	}
	return &dup
}

// HasExplicitTaxon reports whether any explicit higher-taxon field is set.
func (fs *FilterSet) HasExplicitTaxon() bool {
	return fs.Kingdom != "" || fs.Phylum != "" || fs.Class != "" ||
		fs.Order != "" || fs.Family != "" || fs.Genus != ""
}

// Validate checks field consistency. It does not enforce the
// scientific/common exclusivity invariant; Normalize resolves that silently.
func (fs *FilterSet) Validate() error {
	if b := fs.Bounds; b != nil {
		if b.South > b.North {
			return errors.NewValidationError("bounds", fmt.Sprintf("south %v exceeds north %v", b.South, b.North))
		}
		if b.North > 90 || b.South < -90 {
			return errors.NewValidationError("bounds", "latitude out of range")
		}
		if b.East > 180 || b.West < -180 {
			return errors.NewValidationError("bounds", "longitude out of range")
		}
	}
	if yr := fs.YearRange; yr != nil && yr.Start > yr.End {
		return errors.NewValidationError("year_range", fmt.Sprintf("start %d after end %d", yr.Start, yr.End))
	}
	if fs.Month < 0 || fs.Month > 12 {
		return errors.NewValidationError("month", fmt.Sprintf("invalid month %d", fs.Month))
	}
	if fs.Day < 0 || fs.Day > 31 {
		return errors.NewValidationError("day", fmt.Sprintf("invalid day %d", fs.Day))
	}
	if r := fs.Radius; r != nil && r.RadiusKm < 0 {
		return errors.NewValidationError("radius", "radius cannot be negative")
	}
	return nil
}
