// Package taxon implements taxonomic name classification and routing.
// It decides which search-engine field a user-supplied name belongs to
// (species, genus, family or a higher rank) and resolves casual category
// terms like "bird" or "snake" to a concrete taxonomic class or order.
package taxon

import (
	"regexp"
	"strings"
	"unicode"
)

// Rank is the taxonomic level a name string refers to.
// It is derived from the name on every call, never stored.
type Rank string

const (
	RankSpecies Rank = "species"
	RankGenus   Rank = "genus"
	RankFamily  Rank = "family"
	RankHigher  Rank = "higher"
)

// higherSuffixes are name endings reserved for ranks above genus.
// A name ending in one of these is routed to the family field unless it is
// binomial-shaped (see Classify).
var higherSuffixes = []string{
	"idae",    // family
	"inae",    // subfamily
	"ini",     // tribe
	"ales",    // order
	"iformes", // order (fish, birds)
	"oidea",   // superfamily
	"acea",    // various ranks
	"phyta",   // division (plants)
	"mycota",  // division (fungi)
}

// parenRe matches parenthesized sub-genus or author annotations, e.g. the
// "(Rhipidura)" in "Rhipidura (Rhipidura) fuliginosa".
var parenRe = regexp.MustCompile(`\([^)]*\)`)

// Classify determines the taxonomic rank of a raw name string and returns
// the rank together with the cleaned name (annotations stripped, whitespace
// collapsed).
//
// A binomial-shaped name (two or more words, first capitalized, second
// lowercase) always classifies as species, even when it coincidentally ends
// in a reserved higher-taxon suffix. Real binomials must never be
// miscategorized as family.
func Classify(raw string) (Rank, string) {
	cleaned := strings.Join(strings.Fields(parenRe.ReplaceAllString(raw, " ")), " ")
	if cleaned == "" {
		return RankHigher, ""
	}

	parts := strings.Fields(cleaned)
	if len(parts) >= 2 && startsUpper(parts[0]) && startsLower(parts[1]) {
		return RankSpecies, cleaned
	}

	lower := strings.ToLower(cleaned)
	for _, suffix := range higherSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return RankFamily, cleaned
		}
	}

	if len(parts) == 1 && startsUpper(parts[0]) {
		return RankGenus, cleaned
	}

	return RankHigher, cleaned
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
