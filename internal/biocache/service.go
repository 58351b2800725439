package biocache

import (
	"context"
	"time"

	"github.com/ozcamlab/museum-explorer-go/internal/logger"
	"github.com/ozcamlab/museum-explorer-go/internal/metrics"
	"github.com/ozcamlab/museum-explorer-go/internal/taxon"
)

// Executor runs one assembled search request against the engine.
type Executor interface {
	Execute(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// NameLookup translates between the scientific and vernacular name spaces
// via the external species lookup service.
type NameLookup interface {
	ScientificNameFor(ctx context.Context, vernacular string) (string, error)
	VernacularNameFor(ctx context.Context, scientific string) (string, error)
}

// SearchOptions control pagination and client-side record filtering for
// one search.
type SearchOptions struct {
	Page               int
	PageSize           int
	RequireImages      bool
	RequireCoordinates bool
}

const defaultPageSize = 100

// Service orchestrates occurrence searches: input normalization, the
// primary attempt, and a single name-space fallback retry on zero results.
type Service struct {
	executor Executor
	builder  *QueryBuilder
	lookup   NameLookup
	resolver *taxon.Resolver
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewService creates a search service. lookup and resolver may be nil, which
// disables the corresponding fallback tiers.
func NewService(executor Executor, builder *QueryBuilder, lookup NameLookup, resolver *taxon.Resolver, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		executor: executor,
		builder:  builder,
		lookup:   lookup,
		resolver: resolver,
		log:      log.WithModule("search"),
		metrics:  m,
	}
}

// Builder exposes the query builder so callers can construct deep links
// independently of running a search.
func (s *Service) Builder() *QueryBuilder {
	return s.builder
}

// Search runs an occurrence search with name-space fallback.
//
// The fallback is a three-state machine: the search is first executed
// exactly as given; on zero results one retry is attempted in the alternate
// name space (common name resolved to a taxon or scientific name, or
// scientific name swapped for its vernacular); whichever attempt found
// records is returned. When both attempts are empty the ORIGINAL zero-result
// response is returned, preserving the query the caller actually asked
// about.
//
// The caller's FilterSet is never mutated; retries run on fresh copies.
func (s *Service) Search(ctx context.Context, fs FilterSet, opts SearchOptions) (*SearchResult, error) {
	norm, err := s.normalize(&fs)
	if err != nil {
		return nil, err
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}

	primary, err := s.attempt(ctx, norm, opts)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if primary.TotalCount > 0 {
		s.recordOutcome(primary)
		return primary, nil
	}

	retryFS, direction := s.fallbackFilterSet(ctx, norm)
	if retryFS == nil {
		s.recordOutcome(primary)
		return primary, nil
	}

	retry, err := s.attempt(ctx, retryFS, opts)
	if err != nil {
		// The primary attempt already succeeded with zero records; a failed
		// retry downgrades to that legitimate empty result.
		s.log.WithError(err).WithField("direction", direction).
			Warn("Fallback search attempt failed, returning original empty result")
		if s.metrics != nil {
			s.metrics.SearchFallbacksTotal.WithLabelValues(direction, "error").Inc()
		}
		s.recordOutcome(primary)
		return primary, nil
	}

	if retry.TotalCount > 0 {
		if s.metrics != nil {
			s.metrics.SearchFallbacksTotal.WithLabelValues(direction, "success").Inc()
		}
		s.recordOutcome(retry)
		return retry, nil
	}

	if s.metrics != nil {
		s.metrics.SearchFallbacksTotal.WithLabelValues(direction, "empty").Inc()
	}
	s.recordOutcome(primary)
	return primary, nil
}

// Statistics runs a facet-only search (no records) for the given filters.
func (s *Service) Statistics(ctx context.Context, fs FilterSet) (*SearchResult, error) {
	norm, err := s.normalize(&fs)
	if err != nil {
		return nil, err
	}

	resp, err := s.executor.Execute(ctx, SearchRequest{
		Query:         s.builder.Query(norm),
		FilterQueries: s.builder.FilterQueries(norm),
		Spatial:       norm.Radius,
		PageSize:      0,
	})
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		TotalCount:  resp.TotalRecords,
		Records:     []Occurrence{},
		Facets:      resp.Facets,
		DeepLinkURL: s.builder.DeepLink(norm),
	}, nil
}

// normalize validates the filters and applies the documented precedence
// rules on a copy of the caller's FilterSet:
//
//   - scientific_name and common_name are mutually exclusive; when both are
//     supplied the common name is discarded (logged, never surfaced).
//   - A common name matching the static generic-term table is converted to
//     its explicit taxon field before any query is built, so "bird" searches
//     class Aves instead of running an unreliable vernacular wildcard.
func (s *Service) normalize(fs *FilterSet) (*FilterSet, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	norm := fs.Clone()

	if norm.ScientificName != "" && norm.CommonName != "" {
		s.log.WithFields(map[string]any{
			"scientific_name": norm.ScientificName,
			"common_name":     norm.CommonName,
		}).Info("Both name spaces supplied, discarding common name")
		norm.CommonName = ""
	}

	if norm.CommonName != "" && !norm.HasExplicitTaxon() && s.resolver != nil {
		if m, ok := s.resolver.ResolveStatic(norm.CommonName); ok {
			applyMapping(norm, m)
			norm.CommonName = ""
			if s.metrics != nil {
				s.metrics.TermResolutionsTotal.WithLabelValues("static").Inc()
			}
		}
	}

	return norm, nil
}

// attempt executes one search and packages the result with its deep link.
func (s *Service) attempt(ctx context.Context, fs *FilterSet, opts SearchOptions) (*SearchResult, error) {
	start := time.Now()
	resp, err := s.executor.Execute(ctx, SearchRequest{
		Query:              s.builder.Query(fs),
		FilterQueries:      s.builder.FilterQueries(fs),
		Spatial:            fs.Radius,
		Page:               opts.Page,
		PageSize:           opts.PageSize,
		Bounds:             fs.Bounds,
		RequireImages:      opts.RequireImages,
		RequireCoordinates: opts.RequireCoordinates,
	})
	if s.metrics != nil {
		s.metrics.SearchDurationSeconds.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		TotalCount:  resp.TotalRecords,
		Records:     resp.Records,
		Facets:      resp.Facets,
		DeepLinkURL: s.builder.DeepLink(fs),
	}, nil
}

// fallbackFilterSet builds the single retry FilterSet for a zero-result
// search, or nil when no alternate name space is available.
//
// A common name is first run through the full generic-term resolver (static
// plus dynamic consensus, the more reliable path) and only then through a
// scientific-name lookup. A scientific name is swapped for its vernacular.
// Lookup failures are treated as "no resolution available".
func (s *Service) fallbackFilterSet(ctx context.Context, fs *FilterSet) (*FilterSet, string) {
	switch {
	case fs.CommonName != "":
		if s.resolver != nil {
			if m, ok := s.resolver.Resolve(ctx, fs.CommonName); ok {
				retry := fs.Clone()
				applyMapping(retry, m)
				retry.CommonName = ""
				if s.metrics != nil {
					s.metrics.TermResolutionsTotal.WithLabelValues("dynamic").Inc()
				}
				return retry, "common_to_scientific"
			}
		}
		if s.lookup == nil {
			return nil, ""
		}
		scientific, err := s.lookup.ScientificNameFor(ctx, fs.CommonName)
		if err != nil || scientific == "" {
			s.logLookupMiss(err, fs.CommonName)
			return nil, ""
		}
		retry := fs.Clone()
		retry.CommonName = ""
		retry.ScientificName = scientific
		return retry, "common_to_scientific"

	case fs.ScientificName != "":
		if s.lookup == nil {
			return nil, ""
		}
		vernacular, err := s.lookup.VernacularNameFor(ctx, fs.ScientificName)
		if err != nil || vernacular == "" {
			s.logLookupMiss(err, fs.ScientificName)
			return nil, ""
		}
		retry := fs.Clone()
		retry.ScientificName = ""
		retry.CommonName = vernacular
		return retry, "scientific_to_common"
	}

	return nil, ""
}

func (s *Service) logLookupMiss(err error, name string) {
	entry := s.log.WithField("name", name)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("No alternate name space available, keeping empty result")
}

func (s *Service) recordOutcome(result *SearchResult) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if result.TotalCount == 0 {
		status = "empty"
	}
	s.metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	s.metrics.SearchResultRecords.Observe(float64(len(result.Records)))
}

// applyMapping sets the explicit taxon field named by a generic-term
// resolution on the FilterSet, plus its vernacular narrowing filter.
func applyMapping(fs *FilterSet, m taxon.Mapping) {
	switch m.Field {
	case taxon.FieldClass:
		fs.Class = m.Value
	case taxon.FieldOrder:
		fs.Order = m.Value
	case taxon.FieldFamily:
		fs.Family = m.Value
	case taxon.FieldGenus:
		fs.Genus = m.Value
	}
	if m.VernacularFilter != "" {
		fs.VernacularFilter = m.VernacularFilter
	}
}
