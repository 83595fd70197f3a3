package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveRanksByOverlap(t *testing.T) {
	corpus := []Document{
		{ID: "cooking.txt", Body: "slow roasting vegetables brings out sweetness"},
		{ID: "golang.txt", Body: "go is a compiled language with garbage collection"},
	}

	results := Retrieve("go compiled language", corpus, 3)

	require.Len(t, results, 1)
	assert.Equal(t, "golang.txt", results[0].ID)
	// query {go, compiled, language} vs 9 tagged doc words, 3 shared
	assert.InDelta(t, 3.0/9.0, results[0].Score, 1e-9)
}

func TestRetrieveStableTieBreak(t *testing.T) {
	corpus := []Document{
		{ID: "a.txt", Body: "x y"},
		{ID: "b.txt", Body: "x y"},
		{ID: "c.txt", Body: "x y"},
	}

	results := Retrieve("x y", corpus, 3)

	require.Len(t, results, 3)
	assert.Equal(t, "a.txt", results[0].ID)
	assert.Equal(t, "b.txt", results[1].ID)
	assert.Equal(t, "c.txt", results[2].ID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestRetrieveDropsZeroScores(t *testing.T) {
	corpus := []Document{
		{ID: "a.txt", Body: "completely unrelated words here"},
	}

	assert.Empty(t, Retrieve("quantum flux capacitor", corpus, 3))
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	corpus := []Document{
		{ID: "a.txt", Body: "shared term plus extra words one"},
		{ID: "b.txt", Body: "shared term plus extra words two"},
		{ID: "c.txt", Body: "shared term plus extra words three"},
		{ID: "d.txt", Body: "shared term plus extra words four"},
	}

	results := Retrieve("shared term", corpus, 2)
	assert.Len(t, results, 2)

	results = Retrieve("shared term", corpus, 10)
	assert.Len(t, results, 4)
}

func TestRetrieveEmptyInputs(t *testing.T) {
	corpus := []Document{{ID: "a.txt", Body: "some words"}}

	assert.Empty(t, Retrieve("words", nil, 3))
	assert.Empty(t, Retrieve("", corpus, 3))
	assert.Empty(t, Retrieve("words", corpus, 0))
}

func TestJaccardEmptyUnion(t *testing.T) {
	assert.Zero(t, jaccard(tokenize(""), tokenize("  ")))
}

func TestTokenizeLowercasesAndDeduplicates(t *testing.T) {
	set := tokenize("Go GO go language")
	assert.Len(t, set, 2)
	_, ok := set["go"]
	assert.True(t, ok)
	_, ok = set["language"]
	assert.True(t, ok)
}
