package rag

import (
	"sort"
	"strings"
)

// tokenize lowercases the text and splits it on whitespace into a word set.
func tokenize(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|. An empty union scores zero.
func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Retrieve ranks the corpus against the query by word overlap and returns at
// most topK documents. Scoring runs over the tagged document text, ranking is
// stable so ties keep corpus order, and zero scores are dropped.
func Retrieve(query string, corpus []Document, topK int) []ScoredDocument {
	if len(corpus) == 0 || topK <= 0 {
		return nil
	}

	queryWords := tokenize(query)

	scored := make([]ScoredDocument, 0, len(corpus))
	for _, doc := range corpus {
		score := jaccard(queryWords, tokenize(doc.Tagged()))
		scored = append(scored, ScoredDocument{Document: doc, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	// zero scores sort to the tail, trim them off
	cut := len(scored)
	for cut > 0 && scored[cut-1].Score == 0 {
		cut--
	}
	if cut == 0 {
		return nil
	}
	return scored[:cut]
}
