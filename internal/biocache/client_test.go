package biocache

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domerrors "github.com/ozcamlab/museum-explorer-go/internal/errors"
	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

const engineFixture = `{
	"totalRecords": 2,
	"occurrences": [
		{
			"uuid": "abc-1",
			"scientificName": "Macropus rufus",
			"vernacularName": "Red Kangaroo",
			"catalogNumber": "M.1234",
			"raw_catalogNumber": "AM M.1234",
			"classs": "Mammalia",
			"family": "Macropodidae",
			"decimalLatitude": -33.7,
			"decimalLongitude": 151.0,
			"thumbnailUrl": "https://images.example/thumb/1"
		},
		{
			"uuid": "abc-2",
			"scientificName": "Macropus giganteus",
			"class": "Mammalia"
		}
	],
	"facetResults": [
		{
			"fieldName": "stateProvince",
			"fieldResult": [
				{"label": "New South Wales", "count": 120},
				{"label": "", "count": 3}
			]
		},
		{
			"fieldName": "someUnknownFacet",
			"fieldResult": [{"label": "x", "count": 1}]
		}
	]
}`

func newClientAgainst(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, logger.NewWithWriter("error", io.Discard))
}

func TestClientExecuteRequestShape(t *testing.T) {
	var query map[string][]string
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(engineFixture))
	})

	req := SearchRequest{
		Query:         "*:*",
		FilterQueries: []string{`dataResourceUid:"dr340"`, `class:"Aves"`},
		Page:          2,
		PageSize:      50,
		Spatial:       &RadiusSearch{Lat: -33.7, Lon: 151, RadiusKm: 5},
	}
	if _, err := client.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := query["q"]; len(got) != 1 || got[0] != "*:*" {
		t.Errorf("q = %v, want [*:*]", got)
	}
	if got := query["fq"]; len(got) != 2 || got[0] != `dataResourceUid:"dr340"` || got[1] != `class:"Aves"` {
		t.Errorf("fq = %v, want both clauses in order", got)
	}
	if got := query["pageSize"]; len(got) != 1 || got[0] != "50" {
		t.Errorf("pageSize = %v, want [50]", got)
	}
	if got := query["start"]; len(got) != 1 || got[0] != "100" {
		t.Errorf("start = %v, want page*pageSize = [100]", got)
	}
	if got := query["lat"]; len(got) != 1 || got[0] != "-33.7" {
		t.Errorf("lat = %v, want [-33.7]", got)
	}
	if got := query["radius"]; len(got) != 1 || got[0] != "5" {
		t.Errorf("radius = %v, want [5]", got)
	}
	if len(query["facets"]) != 1 {
		t.Errorf("facets = %v, want the facet list", query["facets"])
	}
}

func TestClientExecuteReshaping(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(engineFixture))
	})

	resp, err := client.Execute(context.Background(), SearchRequest{Query: "*:*", PageSize: 10})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2", resp.TotalRecords)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("Records = %d, want 2", len(resp.Records))
	}

	first := resp.Records[0]
	if first.CatalogNumber != "AM M.1234" {
		t.Errorf("CatalogNumber = %q, raw catalog number must win", first.CatalogNumber)
	}
	if first.Class != "Mammalia" {
		t.Errorf("Class = %q, want Mammalia from the classs field", first.Class)
	}
	if !first.HasImage() || !first.HasCoordinates() {
		t.Error("first record should have image and coordinates")
	}

	// The upstream spells class both ways; the plain spelling is the fallback.
	if resp.Records[1].Class != "Mammalia" {
		t.Errorf("Class fallback = %q, want Mammalia", resp.Records[1].Class)
	}

	states, ok := resp.Facets["state_province"]
	if !ok {
		t.Fatalf("Facets = %v, want state_province", resp.Facets)
	}
	if len(states) != 1 || states[0].Value != "New South Wales" || states[0].Count != 120 {
		t.Errorf("state facet = %v, empty labels must be dropped", states)
	}
	if _, ok := resp.Facets["someUnknownFacet"]; ok {
		t.Error("unknown facet fields must be dropped")
	}
}

func TestClientExecutePostFilters(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(engineFixture))
	})

	resp, err := client.Execute(context.Background(), SearchRequest{
		Query:         "*:*",
		PageSize:      10,
		RequireImages: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].ID != "abc-1" {
		t.Errorf("RequireImages kept %d records, want only the one with an image", len(resp.Records))
	}
	// The engine total is reported as-is; only the returned page is filtered.
	if resp.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want unfiltered 2", resp.TotalRecords)
	}

	resp, err = client.Execute(context.Background(), SearchRequest{
		Query:    "*:*",
		PageSize: 10,
		Bounds:   &Bounds{North: -30, South: -40, East: 160, West: 140},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(resp.Records) != 1 {
		t.Errorf("bounds filter kept %d records, want 1 (no-coordinate record dropped)", len(resp.Records))
	}
}

func TestClientExecuteUpstreamErrors(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Execute(context.Background(), SearchRequest{Query: "*:*", PageSize: 10})
	if err == nil {
		t.Fatal("Execute() should fail on a non-2xx response")
	}
	if !domerrors.IsUpstream(err) {
		t.Errorf("Execute() error = %v, want *errors.UpstreamError", err)
	}
}

func TestClientExecuteMalformedBody(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Execute(context.Background(), SearchRequest{Query: "*:*", PageSize: 10})
	if !domerrors.IsUpstream(err) {
		t.Errorf("Execute() error = %v, want *errors.UpstreamError for bad body", err)
	}
}
