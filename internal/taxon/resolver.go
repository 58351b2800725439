package taxon

import (
	"context"

	"github.com/ozcamlab/museum-explorer-go/internal/logger"
)

// Candidate is one ranked match from the external taxonomic name service,
// carrying the full classification hierarchy.
type Candidate struct {
	ScientificName string
	VernacularName string
	RankName       string
	Kingdom        string
	Phylum         string
	Class          string
	Order          string
	Family         string
	Genus          string
}

// CandidateSource provides ranked taxon candidates for a free-text query,
// restricted to the animal kingdom.
type CandidateSource interface {
	Candidates(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// consensusLimit is how many top candidates must agree on a rank value for
// a dynamic resolution to be accepted.
const consensusLimit = 5

// Resolver maps casual category terms ("bird", "snake") to a taxonomic
// field and value. The static table is consulted first; only unknown terms
// fall through to a consensus lookup against the name service.
type Resolver struct {
	source CandidateSource
	log    *logger.Logger
}

// NewResolver creates a resolver. source may be nil, in which case only the
// static table is consulted.
func NewResolver(source CandidateSource, log *logger.Logger) *Resolver {
	return &Resolver{
		source: source,
		log:    log.WithModule("taxon"),
	}
}

// ResolveStatic looks the term up in the static table only. Pure, no I/O.
func (r *Resolver) ResolveStatic(term string) (Mapping, bool) {
	return LookupGeneric(term)
}

// Resolve maps a term to a taxonomic field and value. The static table is
// tried first; unknown terms trigger one name-service lookup, and the shared
// rank across the top candidates (class, then order, family, genus) wins.
// Returns ok=false when no resolution is available; a name-service failure
// is treated the same way, never surfaced as an error.
func (r *Resolver) Resolve(ctx context.Context, term string) (Mapping, bool) {
	if m, ok := LookupGeneric(term); ok {
		return m, true
	}

	if r.source == nil {
		return Mapping{}, false
	}

	candidates, err := r.source.Candidates(ctx, term, consensusLimit)
	if err != nil {
		r.log.WithError(err).WithField("term", term).
			Warn("Name service lookup failed, term left unresolved")
		return Mapping{}, false
	}
	if len(candidates) == 0 {
		return Mapping{}, false
	}

	for _, field := range []string{FieldClass, FieldOrder, FieldFamily, FieldGenus} {
		if value, ok := sharedValue(candidates, field); ok {
			r.log.WithFields(map[string]any{
				"term":  term,
				"field": field,
				"value": value,
			}).Debug("Resolved generic term by candidate consensus")
			return Mapping{Field: field, Value: value}, true
		}
	}

	return Mapping{}, false
}

// sharedValue returns the value all candidates carry at the given rank, or
// ok=false if any candidate is missing it or they disagree.
func sharedValue(candidates []Candidate, field string) (string, bool) {
	var shared string
	for i, c := range candidates {
		v := rankValue(c, field)
		if v == "" {
			return "", false
		}
		if i == 0 {
			shared = v
			continue
		}
		if v != shared {
			return "", false
		}
	}
	return shared, shared != ""
}

func rankValue(c Candidate, field string) string {
	switch field {
	case FieldClass:
		return c.Class
	case FieldOrder:
		return c.Order
	case FieldFamily:
		return c.Family
	case FieldGenus:
		return c.Genus
	default:
		return ""
	}
}
