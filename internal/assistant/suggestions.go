package assistant

// ContextualSuggestions returns follow-up prompts offered after an answer.
func ContextualSuggestions() []string {
	return []string{
		"Search for kangaroo specimens",
		"What species were collected in 2020?",
		"Show me specimens from Queensland with images",
	}
}

// DefaultSuggestions returns the starter prompts for a fresh session.
func DefaultSuggestions() []string {
	return []string{
		"What species were collected in 2020?",
		"What are the most-collected fish species in NSW?",
		"Give me a link to the image of the oldest bird specimen in the collection.",
	}
}
