package taxon

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

type stubSource struct {
	candidates []Candidate
	err        error
	calls      int
}

func (s *stubSource) Candidates(_ context.Context, _ string, _ int) ([]Candidate, error) {
	s.calls++
	return s.candidates, s.err
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestResolveStaticTermSkipsLookup(t *testing.T) {
	source := &stubSource{err: errors.New("should not be called")}
	r := NewResolver(source, testLogger())

	m, ok := r.Resolve(context.Background(), "birds")
	if !ok {
		t.Fatal("Resolve(birds) should resolve from the static table")
	}
	if m.Field != FieldClass || m.Value != "Aves" {
		t.Errorf("Resolve(birds) = %s:%s, want class:Aves", m.Field, m.Value)
	}
	if source.calls != 0 {
		t.Errorf("static resolution performed %d lookups, want 0", source.calls)
	}
}

func TestResolveConsensus(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		wantOK     bool
		wantField  string
		wantValue  string
	}{
		{
			name: "class consensus wins",
			candidates: []Candidate{
				{ScientificName: "Litoria caerulea", Class: "Amphibia", Order: "Anura"},
				{ScientificName: "Litoria peronii", Class: "Amphibia", Order: "Anura"},
			},
			wantOK:    true,
			wantField: FieldClass,
			wantValue: "Amphibia",
		},
		{
			// A candidate missing the class value blocks class consensus
			// outright; order is shared so resolution succeeds there.
			name: "missing class falls through to order",
			candidates: []Candidate{
				{Class: "Insecta", Order: "Odonata"},
				{Class: "", Order: "Odonata"},
			},
			wantOK:    true,
			wantField: FieldOrder,
			wantValue: "Odonata",
		},
		{
			name: "order consensus",
			candidates: []Candidate{
				{Class: "Insecta", Order: "Odonata", Family: "Aeshnidae"},
				{Class: "Arachnida", Order: "Odonata", Family: "Libellulidae"},
			},
			wantOK:    true,
			wantField: FieldOrder,
			wantValue: "Odonata",
		},
		{
			name: "no consensus at any rank",
			candidates: []Candidate{
				{Class: "Aves", Order: "Passeriformes", Family: "Meliphagidae", Genus: "Lichenostomus"},
				{Class: "Mammalia", Order: "Dasyuromorphia", Family: "Dasyuridae", Genus: "Antechinus"},
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&stubSource{candidates: tt.candidates}, testLogger())
			m, ok := r.Resolve(context.Background(), "dragonfly")
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Field != tt.wantField || m.Value != tt.wantValue {
				t.Errorf("Resolve() = %s:%s, want %s:%s", m.Field, m.Value, tt.wantField, tt.wantValue)
			}
		})
	}
}

func TestResolveLookupFailureIsNoResolution(t *testing.T) {
	r := NewResolver(&stubSource{err: errors.New("connection refused")}, testLogger())
	if _, ok := r.Resolve(context.Background(), "dragonfly"); ok {
		t.Error("Resolve() should treat source errors as no resolution")
	}
}

func TestResolveNoCandidates(t *testing.T) {
	r := NewResolver(&stubSource{}, testLogger())
	if _, ok := r.Resolve(context.Background(), "dragonfly"); ok {
		t.Error("Resolve() with no candidates should not resolve")
	}
}

func TestResolveNilSource(t *testing.T) {
	r := NewResolver(nil, testLogger())
	if _, ok := r.Resolve(context.Background(), "dragonfly"); ok {
		t.Error("Resolve() without a source should only use the static table")
	}
	if _, ok := r.Resolve(context.Background(), "birds"); !ok {
		t.Error("Resolve() without a source should still resolve static terms")
	}
}
