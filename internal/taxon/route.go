package taxon

import "strings"

// Search-engine field names used for taxon routing.
// Both the filter-query builder and the deep-link builder render clauses
// from the same Term values, so they can never select different fields for
// the same name.
const (
	FieldKingdom       = "kingdom"
	FieldPhylum        = "phylum"
	FieldClass         = "class"
	FieldOrder         = "order"
	FieldFamily        = "family"
	FieldGenus         = "genus"
	FieldSpecies       = "species"
	FieldVernacular    = "vernacularName"
	FieldRawVernacular = "raw_vernacularName"
)

// Term is an abstract taxon-query decision: which field(s) to query, with
// what value, and whether to match exactly or by substring. More than one
// field means an OR disjunction of the same value across all of them.
type Term struct {
	Fields   []string
	Value    string
	Wildcard bool
}

// RouteName maps a scientific (or scientific-looking) name to the engine
// field(s) it should be queried against, based on its classified rank.
//
//	species -> species field, full cleaned binomial
//	genus   -> genus field, first word only
//	family  -> family field
//	higher  -> disjunction across order/class/phylum/kingdom
func RouteName(name string) Term {
	rank, cleaned := Classify(name)

	switch rank {
	case RankSpecies:
		return Term{Fields: []string{FieldSpecies}, Value: cleaned}
	case RankGenus:
		return Term{Fields: []string{FieldGenus}, Value: strings.Fields(cleaned)[0]}
	case RankFamily:
		return Term{Fields: []string{FieldFamily}, Value: cleaned}
	default:
		return Term{
			Fields: []string{FieldOrder, FieldClass, FieldPhylum, FieldKingdom},
			Value:  cleaned,
		}
	}
}

// RouteVernacular maps a common name to a substring match on the vernacular
// name fields. Partial matching is required so that e.g. "Red-naped Snake"
// matches a query for "snake".
func RouteVernacular(name string) Term {
	return Term{
		Fields:   []string{FieldVernacular, FieldRawVernacular},
		Value:    strings.TrimSpace(name),
		Wildcard: true,
	}
}
