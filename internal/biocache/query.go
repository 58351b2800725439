package biocache

import (
	"fmt"
	"strings"
)

// facetFields are the server-side facet breakdowns requested on every search.
var facetFields = []string{
	"collectionName", "stateProvince", "year", "family", "order", "class",
	"basisOfRecord", "institutionName", "genus",
}

// QueryBuilder renders FilterSets into the two query representations the
// system produces: the engine's repeated fq parameters, and the user-facing
// deep-link URL. Both are rendered from the same plan (see buildPlan).
type QueryBuilder struct {
	// DatasetID scopes every search to one data resource; it is always the
	// first clause emitted.
	DatasetID string

	// UIBaseURL is the public search UI that deep links point at.
	UIBaseURL string
}

// FilterQueries returns the ordered fq clause strings for a FilterSet.
func (b *QueryBuilder) FilterQueries(fs *FilterSet) []string {
	plan := buildPlan(b.DatasetID, fs)
	out := make([]string, 0, len(plan))
	for _, c := range plan {
		out = append(out, renderClause(c))
	}
	return out
}

// Query returns the main query string: the free-text query when given,
// otherwise the match-all query.
func (b *QueryBuilder) Query(fs *FilterSet) string {
	if fs.FreeText != "" {
		return fs.FreeText
	}
	return "*:*"
}

// renderClause renders one clause into the engine's filter-query syntax.
// A multi-field clause becomes a parenthesized OR disjunction.
func renderClause(c clause) string {
	if len(c.fields) == 1 {
		return renderCondition(c.fields[0], c.value, c.kind)
	}
	parts := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		parts = append(parts, renderCondition(f, c.value, c.kind))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func renderCondition(field, value string, kind clauseKind) string {
	switch kind {
	case clauseWildcard:
		return fmt.Sprintf("%s:*%s*", field, value)
	case clauseRaw:
		return fmt.Sprintf("%s:%s", field, value)
	default:
		return fmt.Sprintf("%s:%q", field, value)
	}
}
