// Package rag implements the retrieval-augmented generation pipeline: a flat
// file document store, a keyword overlap retriever, and answer shaping with a
// deterministic fallback when no generation backend is configured.
package rag

// Document is one entry of the retrieval corpus.
type Document struct {
	// ID is the file name the document was loaded from.
	ID string
	// Body is the trimmed file content.
	Body string
}

// Tagged renders the document with its source marker, the form used for
// scoring, context assembly, and API responses.
func (d Document) Tagged() string {
	return "[" + d.ID + "] " + d.Body
}

// ScoredDocument pairs a document with its retrieval score.
type ScoredDocument struct {
	Document
	Score float64
}

// placeholderDocuments returns the built-in corpus served when the docs
// directory holds no readable documents, so retrieval always has content.
func placeholderDocuments() []Document {
	return []Document{
		{
			ID:   "sample1.txt",
			Body: "DSPy is a framework for programming language models. It provides structured ways to build AI applications.",
		},
		{
			ID:   "sample2.txt",
			Body: "ReAct agents combine reasoning and acting to solve complex tasks using tools and external information.",
		},
		{
			ID:   "sample3.txt",
			Body: "Chain of Thought prompting helps models break down complex problems into step-by-step reasoning.",
		},
	}
}
