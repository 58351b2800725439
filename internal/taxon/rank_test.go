package taxon

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRank    Rank
		wantCleaned string
	}{
		{
			name:        "binomial species",
			input:       "Macropus rufus",
			wantRank:    RankSpecies,
			wantCleaned: "Macropus rufus",
		},
		{
			name:        "trinomial species",
			input:       "Macropus rufus rufus",
			wantRank:    RankSpecies,
			wantCleaned: "Macropus rufus rufus",
		},
		{
			name:        "binomial wins over family suffix",
			input:       "Fakeus pseudidae",
			wantRank:    RankSpecies,
			wantCleaned: "Fakeus pseudidae",
		},
		{
			name:        "sub-genus annotation stripped",
			input:       "Rhipidura (Rhipidura) fuliginosa",
			wantRank:    RankSpecies,
			wantCleaned: "Rhipidura fuliginosa",
		},
		{
			name:        "family suffix",
			input:       "Macropodidae",
			wantRank:    RankFamily,
			wantCleaned: "Macropodidae",
		},
		{
			name:        "order suffix iformes",
			input:       "Passeriformes",
			wantRank:    RankFamily,
			wantCleaned: "Passeriformes",
		},
		{
			name:        "subfamily suffix",
			input:       "Pteropodinae",
			wantRank:    RankFamily,
			wantCleaned: "Pteropodinae",
		},
		{
			name:        "single capitalized word is genus",
			input:       "Macropus",
			wantRank:    RankGenus,
			wantCleaned: "Macropus",
		},
		{
			name:        "lowercase single word is higher",
			input:       "chordata",
			wantRank:    RankHigher,
			wantCleaned: "chordata",
		},
		{
			name:        "whitespace collapsed",
			input:       "  Macropus   rufus  ",
			wantRank:    RankSpecies,
			wantCleaned: "Macropus rufus",
		},
		{
			name:        "empty input",
			input:       "",
			wantRank:    RankHigher,
			wantCleaned: "",
		},
		{
			name:        "annotation only",
			input:       "(incertae sedis)",
			wantRank:    RankHigher,
			wantCleaned: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, cleaned := Classify(tt.input)
			if rank != tt.wantRank {
				t.Errorf("Classify(%q) rank = %q, want %q", tt.input, rank, tt.wantRank)
			}
			if cleaned != tt.wantCleaned {
				t.Errorf("Classify(%q) cleaned = %q, want %q", tt.input, cleaned, tt.wantCleaned)
			}
		})
	}
}

func TestRouteName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFields []string
		wantValue  string
	}{
		{
			name:       "species routes full binomial",
			input:      "Macropus rufus",
			wantFields: []string{FieldSpecies},
			wantValue:  "Macropus rufus",
		},
		{
			name:       "genus routes first word",
			input:      "Macropus",
			wantFields: []string{FieldGenus},
			wantValue:  "Macropus",
		},
		{
			name:       "family routes family field",
			input:      "Macropodidae",
			wantFields: []string{FieldFamily},
			wantValue:  "Macropodidae",
		},
		{
			name:       "higher routes rank disjunction",
			input:      "chordata",
			wantFields: []string{FieldOrder, FieldClass, FieldPhylum, FieldKingdom},
			wantValue:  "chordata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := RouteName(tt.input)
			if term.Wildcard {
				t.Errorf("RouteName(%q) unexpectedly wildcard", tt.input)
			}
			if term.Value != tt.wantValue {
				t.Errorf("RouteName(%q) value = %q, want %q", tt.input, term.Value, tt.wantValue)
			}
			if len(term.Fields) != len(tt.wantFields) {
				t.Fatalf("RouteName(%q) fields = %v, want %v", tt.input, term.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if term.Fields[i] != f {
					t.Errorf("RouteName(%q) fields[%d] = %q, want %q", tt.input, i, term.Fields[i], f)
				}
			}
		})
	}
}

func TestRouteVernacular(t *testing.T) {
	term := RouteVernacular(" red kangaroo ")
	if !term.Wildcard {
		t.Error("RouteVernacular() should produce a wildcard term")
	}
	if term.Value != "red kangaroo" {
		t.Errorf("RouteVernacular() value = %q, want %q", term.Value, "red kangaroo")
	}
	if len(term.Fields) != 2 || term.Fields[0] != FieldVernacular || term.Fields[1] != FieldRawVernacular {
		t.Errorf("RouteVernacular() fields = %v, want vernacular field pair", term.Fields)
	}
}
