package rag

import "strings"

const (
	// NoDocumentsAnswer is returned when retrieval finds nothing relevant.
	NoDocumentsAnswer = "No relevant documents found for your query."

	fallbackPrefix     = "Based on the retrieved documents: "
	fallbackContextLen = 500
)

// BuildContext joins the ranked documents into the prompt context, one tagged
// body per document separated by a blank line.
func BuildContext(results []ScoredDocument) string {
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, 0, len(results))
	for _, sd := range results {
		parts = append(parts, sd.Tagged())
	}
	return strings.Join(parts, "\n\n")
}

// FallbackAnswer shapes a response from the raw context when no generation
// backend is available. The context is cut to 500 characters and always
// carries a trailing continuation marker.
func FallbackAnswer(docContext string) string {
	if docContext == "" {
		return NoDocumentsAnswer
	}
	runes := []rune(docContext)
	if len(runes) > fallbackContextLen {
		runes = runes[:fallbackContextLen]
	}
	return fallbackPrefix + string(runes) + "..."
}
