package taxon

import "strings"

// Mapping resolves a casual category term to a taxonomic field and value.
// VernacularFilter, when set, narrows wildcard matches within a broad group:
// "snake" maps to class Reptilia, but only reptiles whose common name
// contains "snake" are wanted.
type Mapping struct {
	Field            string // one of FieldClass, FieldOrder, FieldFamily, FieldGenus
	Value            string
	VernacularFilter string
}

// genericTerms is the static lookup table for common category words.
// Static entries are preferred over the dynamic name-service lookup because
// the external service returns non-animal matches for ambiguous words
// (querying "bird" surfaces a plant nicknamed "bird of paradise").
var genericTerms = map[string]Mapping{
	"bird":    {Field: FieldClass, Value: "Aves"},
	"mammal":  {Field: FieldClass, Value: "Mammalia"},
	"reptile": {Field: FieldClass, Value: "Reptilia"},
	"frog":    {Field: FieldClass, Value: "Amphibia"},
	"fish":    {Field: FieldClass, Value: "Actinopterygii"},
	"shark":   {Field: FieldClass, Value: "Chondrichthyes"},
	"insect":  {Field: FieldClass, Value: "Insecta"},
	"spider":  {Field: FieldClass, Value: "Arachnida"},

	"butterfly": {Field: FieldOrder, Value: "Lepidoptera"},
	"moth":      {Field: FieldOrder, Value: "Lepidoptera", VernacularFilter: "moth"},
	"beetle":    {Field: FieldOrder, Value: "Coleoptera"},
	"ant":       {Field: FieldOrder, Value: "Hymenoptera", VernacularFilter: "ant"},
	"bee":       {Field: FieldOrder, Value: "Hymenoptera", VernacularFilter: "bee"},
	"bat":       {Field: FieldOrder, Value: "Chiroptera"},

	// Not every reptile common name contains "snake" or "lizard", so these
	// carry a vernacular post-filter alongside the class.
	"snake":  {Field: FieldClass, Value: "Reptilia", VernacularFilter: "snake"},
	"lizard": {Field: FieldClass, Value: "Reptilia", VernacularFilter: "lizard"},
	"turtle": {Field: FieldClass, Value: "Reptilia", VernacularFilter: "turtle"},

	"kangaroo": {Field: FieldFamily, Value: "Macropodidae"},
	"wallaby":  {Field: FieldFamily, Value: "Macropodidae", VernacularFilter: "wallaby"},
	"possum":   {Field: FieldOrder, Value: "Diprotodontia", VernacularFilter: "possum"},
}

// LookupGeneric returns the static mapping for a casual category term,
// accepting singular or plural forms. No I/O is performed.
func LookupGeneric(term string) (Mapping, bool) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return Mapping{}, false
	}

	if m, ok := genericTerms[key]; ok {
		return m, true
	}

	// Plural forms: butterflies -> butterfly, snakes -> snake, fishes -> fish.
	if singular, ok := strings.CutSuffix(key, "ies"); ok {
		if m, found := genericTerms[singular+"y"]; found {
			return m, true
		}
	}
	if singular, ok := strings.CutSuffix(key, "es"); ok {
		if m, found := genericTerms[singular]; found {
			return m, true
		}
	}
	if singular, ok := strings.CutSuffix(key, "s"); ok {
		if m, found := genericTerms[singular]; found {
			return m, true
		}
	}

	return Mapping{}, false
}
