package biocache

import (
	"fmt"

	"github.com/ozcamlab/museum-explorer-go/internal/taxon"
)

// clauseKind selects how a clause value is rendered into the engine's
// filter-query syntax.
type clauseKind int

const (
	clauseExact    clauseKind = iota // field:"value"
	clauseWildcard                   // field:*value*
	clauseRaw                        // field:value (numbers, ranges, reserved tokens)
)

// clause is one filter-query condition. More than one field means an OR
// disjunction of the same value across all of them.
type clause struct {
	fields []string
	value  string
	kind   clauseKind
}

// buildPlan turns a FilterSet into the ordered clause list both the API
// filter queries and the deep-link URL are rendered from. Keeping a single
// plan is what guarantees the link a user clicks reproduces the exact result
// set the API call returned.
//
// Clause order: dataset scope, taxon, geography, time, specimen metadata,
// media.
func buildPlan(datasetID string, fs *FilterSet) []clause {
	plan := []clause{
		{fields: []string{"dataResourceUid"}, value: datasetID, kind: clauseExact},
	}

	plan = append(plan, taxonClauses(fs)...)

	if b := fs.Bounds; b != nil {
		plan = append(plan,
			clause{fields: []string{"decimalLatitude"}, value: fmt.Sprintf("[%v TO %v]", b.South, b.North), kind: clauseRaw},
			clause{fields: []string{"decimalLongitude"}, value: fmt.Sprintf("[%v TO %v]", b.West, b.East), kind: clauseRaw},
		)
	}
	if fs.StateProvince != "" {
		plan = append(plan, clause{fields: []string{"stateProvince"}, value: fs.StateProvince, kind: clauseExact})
	}
	if fs.Locality != "" {
		plan = append(plan, clause{fields: []string{"locality"}, value: fs.Locality, kind: clauseExact})
	}

	if fs.Year != 0 {
		plan = append(plan, clause{fields: []string{"year"}, value: fmt.Sprintf("%d", fs.Year), kind: clauseRaw})
	}
	if yr := fs.YearRange; yr != nil {
		plan = append(plan, clause{fields: []string{"year"}, value: fmt.Sprintf("[%d TO %d]", yr.Start, yr.End), kind: clauseRaw})
	}
	if fs.Month != 0 {
		plan = append(plan, clause{fields: []string{"month"}, value: fmt.Sprintf("%d", fs.Month), kind: clauseRaw})
	}
	if fs.Day != 0 {
		plan = append(plan, clause{fields: []string{"day"}, value: fmt.Sprintf("%d", fs.Day), kind: clauseRaw})
	}

	if fs.CatalogNumber != "" {
		plan = append(plan, clause{fields: []string{"catalogNumber", "raw_catalogNumber"}, value: fs.CatalogNumber, kind: clauseExact})
	}
	if fs.RecordedBy != "" {
		plan = append(plan, clause{fields: []string{"recordedBy"}, value: fs.RecordedBy, kind: clauseExact})
	}
	if fs.IdentifiedBy != "" {
		plan = append(plan, clause{fields: []string{"identifiedBy"}, value: fs.IdentifiedBy, kind: clauseExact})
	}
	if fs.CollectionName != "" {
		plan = append(plan, clause{fields: []string{"collectionName"}, value: fs.CollectionName, kind: clauseExact})
	}
	if fs.BasisOfRecord != "" {
		plan = append(plan, clause{fields: []string{"basisOfRecord"}, value: fs.BasisOfRecord, kind: clauseRaw})
	}
	if fs.Institution != "" {
		plan = append(plan, clause{fields: []string{"institutionName"}, value: fs.Institution, kind: clauseExact})
	}

	if fs.HasImage {
		plan = append(plan, clause{fields: []string{"multimedia"}, value: "Image", kind: clauseRaw})
	}

	return plan
}

// taxonClauses selects the taxon-query branch for a FilterSet. The branches
// are ordered by specificity of intent:
//
//  1. Explicit higher-taxon fields win outright; rank classification is
//     bypassed. A vernacular filter produced by generic-term resolution is
//     additive here, narrowing a broad class like Reptilia to common names
//     containing "snake".
//  2. A standalone vernacular filter becomes a substring clause.
//  3. A scientific name is routed by classified rank.
//  4. A common name becomes a vernacular substring clause.
func taxonClauses(fs *FilterSet) []clause {
	var clauses []clause

	if fs.HasExplicitTaxon() {
		for _, f := range []struct{ field, value string }{
			{taxon.FieldKingdom, fs.Kingdom},
			{taxon.FieldPhylum, fs.Phylum},
			{taxon.FieldClass, fs.Class},
			{taxon.FieldOrder, fs.Order},
			{taxon.FieldFamily, fs.Family},
			{taxon.FieldGenus, fs.Genus},
		} {
			if f.value != "" {
				clauses = append(clauses, clause{fields: []string{f.field}, value: f.value, kind: clauseExact})
			}
		}
		if fs.VernacularFilter != "" {
			clauses = append(clauses, termClause(taxon.RouteVernacular(fs.VernacularFilter)))
		}
		return clauses
	}

	if fs.VernacularFilter != "" {
		return []clause{termClause(taxon.RouteVernacular(fs.VernacularFilter))}
	}

	if fs.ScientificName != "" {
		return []clause{termClause(taxon.RouteName(fs.ScientificName))}
	}

	if fs.CommonName != "" {
		return []clause{termClause(taxon.RouteVernacular(fs.CommonName))}
	}

	return nil
}

// termClause converts an abstract routing decision into a clause.
func termClause(t taxon.Term) clause {
	kind := clauseExact
	if t.Wildcard {
		kind = clauseWildcard
	}
	return clause{fields: t.Fields, value: t.Value, kind: kind}
}
