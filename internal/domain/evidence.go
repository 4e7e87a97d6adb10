package domain

import "context"

// EvidenceItem is one retrieved passage plus the locator of the document it
// came from. It is produced by the retrieval capability and never mutated.
type EvidenceItem struct {
	PassageText string
	Locator     string
	Score       float64
}

// ResolvedSource is fully reconciled, human-displayable metadata for a
// citation. Relevance is used only for ranking and is never exposed to
// clients.
type ResolvedSource struct {
	Title     string
	Date      string
	Author    string
	Outlet    string
	URL       string
	Locator   string
	Relevance float64
}

// ScoredSource pairs an evidence item with its resolved source metadata.
type ScoredSource struct {
	Evidence EvidenceItem
	Source   ResolvedSource
}

// LLMResponse carries the LLM output and whether the generation finished.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient defines the capability to send prompts to an LLM and receive
// textual responses.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (*LLMResponse, error)
	Version() string
}

// Retriever defines the semantic search capability over the news archive.
// It returns up to k passages with source locators.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]EvidenceItem, error)
}

// DocumentStore reads archived source documents by their opaque locator.
type DocumentStore interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// WebSearcher is the live, recency-aware answer capability used when the
// archive cannot satisfy a question.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// VectorEncoder turns texts into embedding vectors for vector search.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}
