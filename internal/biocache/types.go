package biocache

// engineResponse is the raw search response envelope from the upstream
// engine.
type engineResponse struct {
	TotalRecords int              `json:"totalRecords"`
	Occurrences  []rawOccurrence  `json:"occurrences"`
	FacetResults []rawFacetResult `json:"facetResults"`
}

// rawOccurrence carries the upstream field names before reshaping.
type rawOccurrence struct {
	UUID             string   `json:"uuid"`
	DecimalLatitude  *float64 `json:"decimalLatitude"`
	DecimalLongitude *float64 `json:"decimalLongitude"`

	ScientificName    string `json:"scientificName"`
	VernacularName    string `json:"vernacularName"`
	CatalogNumber     string `json:"catalogNumber"`
	RawCatalogNumber  string `json:"raw_catalogNumber"`
	CollectionName    string `json:"collectionName"`
	BasisOfRecord     string `json:"basisOfRecord"`
	EventDate         string `json:"eventDate"`
	Locality          string `json:"locality"`
	StateProvince     string `json:"stateProvince"`
	InstitutionName   string `json:"institutionName"`
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	Day               int    `json:"day"`

	Kingdom  string `json:"kingdom"`
	Phylum   string `json:"phylum"`
	Class    string `json:"classs"`
	ClassAlt string `json:"class"`
	Order    string `json:"order"`
	Family   string `json:"family"`
	Genus    string `json:"genus"`
	Species  string `json:"species"`

	RecordedBy   string `json:"recordedBy"`
	IdentifiedBy string `json:"identifiedBy"`

	CoordinateUncertaintyInMeters *float64 `json:"coordinateUncertaintyInMeters"`
	DataGeneralizations           string   `json:"dataGeneralizations"`

	ImageURL      string   `json:"imageUrl"`
	LargeImageURL string   `json:"largeImageUrl"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	Images        []string `json:"images"`
}

type rawFacetResult struct {
	FieldName   string `json:"fieldName"`
	FieldResult []struct {
		Label string `json:"label"`
		Count int64  `json:"count"`
	} `json:"fieldResult"`
}

// Occurrence is a flattened specimen record as exposed to callers.
type Occurrence struct {
	ID        string   `json:"id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	ScientificName  string `json:"scientific_name"`
	CommonName      string `json:"common_name"`
	CatalogNumber   string `json:"catalog_number"`
	CollectionName  string `json:"collection_name"`
	BasisOfRecord   string `json:"basis_of_record"`
	EventDate       string `json:"event_date"`
	Locality        string `json:"locality"`
	StateProvince   string `json:"state_province"`
	InstitutionName string `json:"institution"`
	Year            int    `json:"year,omitempty"`
	Month           int    `json:"month,omitempty"`
	Day             int    `json:"day,omitempty"`

	// Taxonomic hierarchy
	Kingdom string `json:"kingdom,omitempty"`
	Phylum  string `json:"phylum,omitempty"`
	Class   string `json:"class,omitempty"`
	Order   string `json:"order,omitempty"`
	Family  string `json:"family,omitempty"`
	Genus   string `json:"genus,omitempty"`
	Species string `json:"species,omitempty"`

	// People
	RecordedBy   string `json:"recorded_by,omitempty"`
	IdentifiedBy string `json:"identified_by,omitempty"`

	// Spatial precision
	CoordinateUncertaintyInMeters *float64 `json:"coordinate_uncertainty_m,omitempty"`
	DataGeneralizations           string   `json:"data_generalizations,omitempty"`

	// Image URLs by quality tier, plus the raw list of all image URLs
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	LargeImageURL string   `json:"large_image_url,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// HasCoordinates reports whether the record carries a usable lat/lon pair.
func (o *Occurrence) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}

// HasImage reports whether any image tier is populated.
func (o *Occurrence) HasImage() bool {
	return o.ImageURL != "" || o.LargeImageURL != "" || o.ThumbnailURL != "" || len(o.Images) > 0
}

// FacetCount is one value bucket within a facet breakdown.
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// SearchResult is the outcome of one occurrence search.
// DeepLinkURL always encodes the same semantic filters the engine was
// queried with, including for zero-result searches, so users can verify an
// empty result themselves.
type SearchResult struct {
	TotalCount  int                     `json:"total_count"`
	Records     []Occurrence            `json:"records"`
	Facets      map[string][]FacetCount `json:"facets,omitempty"`
	DeepLinkURL string                  `json:"deep_link_url"`
}

// facetFieldNames maps upstream facet field names to the snake_case names
// exposed to callers. Unknown facets are dropped.
var facetFieldNames = map[string]string{
	"collectionName":  "collection_name",
	"stateProvince":   "state_province",
	"year":            "year",
	"family":          "family",
	"order":           "order",
	"class":           "class",
	"basisOfRecord":   "basis_of_record",
	"institutionName": "institution",
	"kingdom":         "kingdom",
	"phylum":          "phylum",
	"genus":           "genus",
}

// reshapeOccurrence renames and flattens one raw record.
func reshapeOccurrence(raw *rawOccurrence) Occurrence {
	catalog := raw.RawCatalogNumber
	if catalog == "" {
		catalog = raw.CatalogNumber
	}
	class := raw.Class
	if class == "" {
		class = raw.ClassAlt
	}
	return Occurrence{
		ID:              raw.UUID,
		Latitude:        raw.DecimalLatitude,
		Longitude:       raw.DecimalLongitude,
		ScientificName:  raw.ScientificName,
		CommonName:      raw.VernacularName,
		CatalogNumber:   catalog,
		CollectionName:  raw.CollectionName,
		BasisOfRecord:   raw.BasisOfRecord,
		EventDate:       raw.EventDate,
		Locality:        raw.Locality,
		StateProvince:   raw.StateProvince,
		InstitutionName: raw.InstitutionName,
		Year:            raw.Year,
		Month:           raw.Month,
		Day:             raw.Day,

		Kingdom: raw.Kingdom,
		Phylum:  raw.Phylum,
		Class:   class,
		Order:   raw.Order,
		Family:  raw.Family,
		Genus:   raw.Genus,
		Species: raw.Species,

		RecordedBy:   raw.RecordedBy,
		IdentifiedBy: raw.IdentifiedBy,

		CoordinateUncertaintyInMeters: raw.CoordinateUncertaintyInMeters,
		DataGeneralizations:           raw.DataGeneralizations,

		ThumbnailURL:  raw.ThumbnailURL,
		ImageURL:      raw.ImageURL,
		LargeImageURL: raw.LargeImageURL,
		Images:        raw.Images,
	}
}

// reshapeFacets maps the raw facet results into caller-facing names,
// dropping empty labels and unknown fields.
func reshapeFacets(raw []rawFacetResult) map[string][]FacetCount {
	facets := make(map[string][]FacetCount)
	for _, fr := range raw {
		name, ok := facetFieldNames[fr.FieldName]
		if !ok {
			continue
		}
		counts := make([]FacetCount, 0, len(fr.FieldResult))
		for _, item := range fr.FieldResult {
			if item.Label == "" {
				continue
			}
			counts = append(counts, FacetCount{Value: item.Label, Count: item.Count})
		}
		facets[name] = counts
	}
	return facets
}
