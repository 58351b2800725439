package assistant

import (
	"strings"
	"testing"
)

const testUIBase = "https://collections.ala.org.au"

func TestCleanRemovesJSONBlocks(t *testing.T) {
	c := NewCleaner(testUIBase)

	message := `I found 42 kangaroo specimens in the collection.
{"total_records": 42, "occurrences": [{"scientific_name": "Macropus rufus"}]}
Most were collected in New South Wales.`

	got := c.Clean(message, nil)
	if strings.Contains(got, "total_records") || strings.Contains(got, "{") {
		t.Errorf("Clean() left JSON in output: %q", got)
	}
	if !strings.Contains(got, "42 kangaroo specimens") {
		t.Errorf("Clean() dropped prose: %q", got)
	}
}

func TestCleanRemovesToolLeakage(t *testing.T) {
	c := NewCleaner(testUIBase)

	tests := []struct {
		name    string
		message string
		leaked  string
	}{
		{
			"narrated intent",
			"I'll search the collection for wombat records now.\nThe collection holds 17 wombat specimens from Victoria.",
			"I'll search",
		},
		{
			"function marker",
			"(to=functions.search_specimens {\"common_name\": \"wombat\"})\nThe collection holds 17 wombat specimens from Victoria.",
			"to=functions",
		},
		{
			"simulated note",
			"The collection holds 17 wombat specimens from Victoria. (this is simulated)",
			"simulated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Clean(tt.message, nil)
			if strings.Contains(got, tt.leaked) {
				t.Errorf("Clean() = %q, still contains %q", got, tt.leaked)
			}
			if !strings.Contains(got, "17 wombat specimens") {
				t.Errorf("Clean() = %q, dropped the answer", got)
			}
		})
	}
}

func TestCleanReplacesDeepLink(t *testing.T) {
	c := NewCleaner(testUIBase)

	payload := `{"total_records": 3, "ala_url": "https://collections.ala.org.au/occurrences/search?q=*%3A*&fq=species%3A%22Setonix%20brachyurus%22"}`
	message := "I found 3 quokka records. Browse them at " +
		"https://collections.ala.org.au/occurrences/search?q=quokka&fq=species:Setonix+brachyurus in the collection."

	got := c.Clean(message, []string{payload})
	want := "https://collections.ala.org.au/occurrences/search?q=*%3A*&fq=species%3A%22Setonix%20brachyurus%22"
	if !strings.Contains(got, want) {
		t.Errorf("Clean() = %q, want authoritative URL %q", got, want)
	}
	if strings.Contains(got, "fq=species:Setonix+brachyurus") {
		t.Errorf("Clean() = %q, model-written URL survived", got)
	}
}

func TestCleanUsesNewestPayloadURL(t *testing.T) {
	c := NewCleaner(testUIBase)

	payloads := []string{
		`{"ala_url": "https://collections.ala.org.au/occurrences/search?fq=old"}`,
		`{"total_records": 0}`,
		`{"ala_url": "https://collections.ala.org.au/occurrences/search?fq=new"}`,
	}
	message := "See the full results: https://collections.ala.org.au/occurrences/search?fq=stale for details."

	got := c.Clean(message, payloads)
	if !strings.Contains(got, "fq=new") {
		t.Errorf("Clean() = %q, want URL from newest payload with a link", got)
	}
}

func TestCleanHollowedResponseFallbacks(t *testing.T) {
	c := NewCleaner(testUIBase)

	got := c.Clean(`I'll search the collection for that.
{"query": "some long json payload here"}`, nil)
	if !strings.Contains(got, "rephrase") {
		t.Errorf("Clean() = %q, want rephrase fallback", got)
	}

	got = c.Clean(`Sorry, no records. {"total_records": 0, "occurrences": []}`, nil)
	if !strings.Contains(got, "couldn't find any matching records") {
		t.Errorf("Clean() = %q, want no-results fallback", got)
	}
}

func TestCleanCollapsesBlankLines(t *testing.T) {
	c := NewCleaner(testUIBase)

	got := c.Clean("The collection holds 42 specimens.\n\n\n\nMost are from Queensland museums.", nil)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("Clean() = %q, want collapsed blank lines", got)
	}
	if !strings.HasPrefix(got, "The collection") || !strings.HasSuffix(got, "museums.") {
		t.Errorf("Clean() = %q, want trimmed prose preserved", got)
	}
}
