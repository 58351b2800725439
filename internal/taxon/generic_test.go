package taxon

import "testing"

func TestLookupGeneric(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantField  string
		wantValue  string
		wantFilter string
	}{
		{
			name:      "bird maps to class Aves",
			input:     "bird",
			wantOK:    true,
			wantField: FieldClass,
			wantValue: "Aves",
		},
		{
			name:      "plural birds",
			input:     "birds",
			wantOK:    true,
			wantField: FieldClass,
			wantValue: "Aves",
		},
		{
			name:      "case insensitive",
			input:     " Mammals ",
			wantOK:    true,
			wantField: FieldClass,
			wantValue: "Mammalia",
		},
		{
			name:      "ies plural",
			input:     "butterflies",
			wantOK:    true,
			wantField: FieldOrder,
			wantValue: "Lepidoptera",
		},
		{
			name:       "snake carries vernacular filter",
			input:      "snakes",
			wantOK:     true,
			wantField:  FieldClass,
			wantValue:  "Reptilia",
			wantFilter: "snake",
		},
		{
			name:      "kangaroo maps to family",
			input:     "kangaroo",
			wantOK:    true,
			wantField: FieldFamily,
			wantValue: "Macropodidae",
		},
		{
			name:   "unknown term",
			input:  "quokka",
			wantOK: false,
		},
		{
			name:   "empty term",
			input:  "  ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := LookupGeneric(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("LookupGeneric(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Field != tt.wantField || m.Value != tt.wantValue {
				t.Errorf("LookupGeneric(%q) = %s:%s, want %s:%s", tt.input, m.Field, m.Value, tt.wantField, tt.wantValue)
			}
			if m.VernacularFilter != tt.wantFilter {
				t.Errorf("LookupGeneric(%q) filter = %q, want %q", tt.input, m.VernacularFilter, tt.wantFilter)
			}
		})
	}
}
