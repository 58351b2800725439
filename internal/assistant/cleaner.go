package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Cleaner post-processes model responses before they reach users: raw JSON
// and tool-call narration are stripped, and any collection URL the model
// reproduced from memory is replaced with the exact one the search built.
// Models reliably mangle the URL encoding when they rewrite links, which
// breaks the promise that the link shows the same records the answer
// describes.
type Cleaner struct {
	jsonObject   *regexp.Regexp
	jsonArray    *regexp.Regexp
	braceBlock   *regexp.Regexp
	willDo       *regexp.Regexp
	doing        *regexp.Regexp
	gerundLead   *regexp.Regexp
	doneLead     *regexp.Regexp
	parenNote    *regexp.Regexp
	callingFunc  *regexp.Regexp
	simulated    *regexp.Regexp
	callMarker   *regexp.Regexp
	toFunctions  *regexp.Regexp
	orphanBraces *regexp.Regexp
	multiNewline *regexp.Regexp
	deepLinkURL  *regexp.Regexp
}

// NewCleaner creates a cleaner whose URL correction targets links under the
// given collection UI base URL.
func NewCleaner(uiBaseURL string) *Cleaner {
	linkPattern := regexp.QuoteMeta(strings.TrimSuffix(uiBaseURL, "/")+"/occurrences/search") + `[^\s\)\]\n]*`

	return &Cleaner{
		jsonObject:   regexp.MustCompile(`\{["'][a-zA-Z_]+["']:[^}]{10,}\}`),
		jsonArray:    regexp.MustCompile(`\[\{[^\]]{20,}\}\]`),
		braceBlock:   regexp.MustCompile(`\{[^}]{5,}\}`),
		willDo:       regexp.MustCompile(`(?i)I'll\s+(search|check|query|look|get|retrieve|find|call)[^\n.]+[.\n]?`),
		doing:        regexp.MustCompile(`(?i)I'm\s+(searching|checking|querying|looking|getting|retrieving|finding|calling)[^\n.]+[.\n]?`),
		gerundLead:   regexp.MustCompile(`(?i)(Searching|Querying|Checking|Looking|Getting|Retrieving|Finding)[^\n]*[.\n]`),
		doneLead:     regexp.MustCompile(`(?i)(Done|Finished)[^\n]*[.\n]`),
		parenNote:    regexp.MustCompile(`(?is)\(Note:.*?\)[.\n]?`),
		callingFunc:  regexp.MustCompile(`(?i)Calling\s+(function|the\s+function)[^\n.]+[.\n]?`),
		simulated:    regexp.MustCompile(`(?i)\(this\s+is\s+simulated\)[.\n]?`),
		callMarker:   regexp.MustCompile(`_call_[a-z_]+_`),
		toFunctions:  regexp.MustCompile(`\(to=functions\.[a-z_]+[^)]*\)`),
		orphanBraces: regexp.MustCompile(`(?m)^\s*[{}]\s*$`),
		multiNewline: regexp.MustCompile(`\n\n+`),
		deepLinkURL:  regexp.MustCompile(linkPattern),
	}
}

// Clean sanitizes one response. toolPayloads are the JSON payloads of the
// tool results behind the response, newest last; the newest one carrying a
// link supplies the authoritative URL.
func (c *Cleaner) Clean(message string, toolPayloads []string) string {
	original := message

	message = c.removeJSONBlocks(message)
	message = c.removeToolLeakage(message)
	if url := authoritativeURL(toolPayloads); url != "" {
		message = c.deepLinkURL.ReplaceAllString(message, url)
	}
	message = c.cleanupFormatting(message)

	// Cleaning can hollow out a response that was mostly leakage. Preserve
	// a genuine no-results statement; otherwise ask to rephrase.
	if len(strings.TrimSpace(message)) < 20 {
		lower := strings.ToLower(original)
		if strings.Contains(lower, "couldn't find") || strings.Contains(lower, "no records") || strings.Contains(lower, "0 records") {
			return "I couldn't find any matching records in the Australian Museum collection for that query."
		}
		return "I encountered an issue processing that query. Could you rephrase your question?"
	}

	return message
}

func (c *Cleaner) removeJSONBlocks(text string) string {
	text = c.jsonObject.ReplaceAllString(text, "")
	text = c.jsonArray.ReplaceAllString(text, "")
	return c.braceBlock.ReplaceAllString(text, "")
}

func (c *Cleaner) removeToolLeakage(text string) string {
	text = c.willDo.ReplaceAllString(text, "")
	text = c.doing.ReplaceAllString(text, "")
	text = c.gerundLead.ReplaceAllString(text, "")
	text = c.doneLead.ReplaceAllString(text, "")
	text = c.parenNote.ReplaceAllString(text, "")
	text = c.callingFunc.ReplaceAllString(text, "")
	text = c.simulated.ReplaceAllString(text, "")
	text = c.callMarker.ReplaceAllString(text, "")
	return c.toFunctions.ReplaceAllString(text, "")
}

func (c *Cleaner) cleanupFormatting(text string) string {
	text = c.orphanBraces.ReplaceAllString(text, "")
	text = c.multiNewline.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// authoritativeURL extracts the deep link from the newest tool payload that
// carries one.
func authoritativeURL(toolPayloads []string) string {
	for i := len(toolPayloads) - 1; i >= 0; i-- {
		var payload struct {
			ALAURL string `json:"ala_url"`
		}
		if err := json.Unmarshal([]byte(toolPayloads[i]), &payload); err != nil {
			continue
		}
		if payload.ALAURL != "" {
			return payload.ALAURL
		}
	}
	return ""
}
