package biocache

import (
	"net/url"
	"strconv"
	"strings"
)

// DeepLink builds the user-facing search URL equivalent to the filter
// queries for the same FilterSet. It renders the identical plan the API
// query uses, so the linked result set always matches what was reported.
//
// Clause values are fully percent-encoded: quote characters in the filter
// syntax appear as %22 and spaces as %20, keeping the URL parseable.
func (b *QueryBuilder) DeepLink(fs *FilterSet) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(b.UIBaseURL, "/"))
	sb.WriteString("/occurrences/search?q=")
	sb.WriteString(encodeQueryTerm(b.Query(fs)))

	for _, c := range buildPlan(b.DatasetID, fs) {
		sb.WriteString("&fq=")
		sb.WriteString(encodeQueryTerm(renderClause(c)))
	}

	if r := fs.Radius; r != nil {
		sb.WriteString("&lat=")
		sb.WriteString(encodeQueryTerm(trimFloat(r.Lat)))
		sb.WriteString("&lon=")
		sb.WriteString(encodeQueryTerm(trimFloat(r.Lon)))
		sb.WriteString("&radius=")
		sb.WriteString(encodeQueryTerm(trimFloat(r.RadiusKm)))
	}

	return sb.String()
}

// encodeQueryTerm percent-encodes a query-string value, using %20 rather
// than + for spaces so the encoded clause reads the same in both the query
// string and the engine's own syntax.
func encodeQueryTerm(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// trimFloat formats a float without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
