package biocache

import (
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestDeepLinkEncoding(t *testing.T) {
	link := testBuilder().DeepLink(&FilterSet{ScientificName: "Macropus rufus"})

	if !strings.HasPrefix(link, "https://biocache.ala.org.au/occurrences/search?q=") {
		t.Fatalf("DeepLink() = %q, want search UI prefix", link)
	}
	// Colons, quotes and spaces must be percent-encoded, with %20 for
	// spaces, never +.
	if !strings.Contains(link, "fq=species%3A%22Macropus%20rufus%22") {
		t.Errorf("DeepLink() = %q, want encoded species clause", link)
	}
	if strings.Contains(link, "+") {
		t.Errorf("DeepLink() = %q, must not use + for spaces", link)
	}
}

// TestDeepLinkMatchesFilterQueries is the consistency check behind every
// result link: decoding the URL must yield exactly the clauses the engine
// was queried with, in the same order.
func TestDeepLinkMatchesFilterQueries(t *testing.T) {
	tests := []struct {
		name string
		fs   FilterSet
	}{
		{"species search", FilterSet{ScientificName: "Macropus rufus"}},
		{"common name search", FilterSet{CommonName: "kangaroo"}},
		{"class with filter", FilterSet{Class: "Reptilia", VernacularFilter: "snake"}},
		{"higher rank", FilterSet{ScientificName: "chordata"}},
		{
			"loaded filter set",
			FilterSet{
				ScientificName: "Macropodidae",
				StateProvince:  "Queensland",
				YearRange:      &YearRange{Start: 1900, End: 2000},
				Bounds:         &Bounds{North: -10, South: -44, East: 154, West: 112},
				HasImage:       true,
			},
		},
	}

	b := testBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := b.DeepLink(&tt.fs)
			parsed, err := url.Parse(link)
			if err != nil {
				t.Fatalf("DeepLink() produced unparseable URL: %v", err)
			}
			values, err := url.ParseQuery(parsed.RawQuery)
			if err != nil {
				t.Fatalf("DeepLink() query unparseable: %v", err)
			}

			if got := values.Get("q"); got != b.Query(&tt.fs) {
				t.Errorf("q = %q, want %q", got, b.Query(&tt.fs))
			}
			if got, want := values["fq"], b.FilterQueries(&tt.fs); !reflect.DeepEqual(got, want) {
				t.Errorf("fq = %v, want %v", got, want)
			}
		})
	}
}

func TestDeepLinkRadiusParameters(t *testing.T) {
	fs := FilterSet{
		Radius: &RadiusSearch{Lat: -33.731, Lon: 150.99, RadiusKm: 5},
	}
	link := testBuilder().DeepLink(&fs)

	values, err := url.ParseQuery(strings.SplitN(link, "?", 2)[1])
	if err != nil {
		t.Fatalf("DeepLink() query unparseable: %v", err)
	}
	if got := values.Get("lat"); got != "-33.731" {
		t.Errorf("lat = %q, want -33.731", got)
	}
	if got := values.Get("lon"); got != "150.99" {
		t.Errorf("lon = %q, want 150.99", got)
	}
	if got := values.Get("radius"); got != "5" {
		t.Errorf("radius = %q, want 5", got)
	}
}
