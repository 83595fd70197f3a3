package parsers

import (
	"strings"
)

const (
	reasoningMarker = "reasoning:"
	answerMarker    = "answer:"
)

const (
	sectionPreamble = iota
	sectionReasoning
	sectionAnswer
)

// ParseSections splits a chain of thought reply into its reasoning and
// answer parts. Markers are matched case-insensitively at line starts.
// A reply that never reaches an answer marker is returned whole as the
// answer so callers always have something to show.
func ParseSections(content string) (reasoning, answer string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ""
	}

	var reasoningLines, answerLines []string
	section := sectionPreamble
	for _, line := range strings.Split(trimmed, "\n") {
		l := strings.TrimSpace(line)
		lower := strings.ToLower(l)
		switch {
		case section < sectionAnswer && strings.HasPrefix(lower, reasoningMarker):
			section = sectionReasoning
			if rest := strings.TrimSpace(l[len(reasoningMarker):]); rest != "" {
				reasoningLines = append(reasoningLines, rest)
			}
		case strings.HasPrefix(lower, answerMarker):
			section = sectionAnswer
			if rest := strings.TrimSpace(l[len(answerMarker):]); rest != "" {
				answerLines = append(answerLines, rest)
			}
		case section == sectionReasoning:
			reasoningLines = append(reasoningLines, l)
		case section == sectionAnswer:
			answerLines = append(answerLines, l)
		}
	}

	reasoning = strings.TrimSpace(strings.Join(reasoningLines, "\n"))
	if section < sectionAnswer {
		return reasoning, trimmed
	}
	return reasoning, strings.TrimSpace(strings.Join(answerLines, "\n"))
}
