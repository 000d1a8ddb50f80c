package core

import "context"

// VectorStore is the embedding store collaborator. It persists chunk
// embeddings and answers top-K similarity queries.
type VectorStore interface {
	// Add embeds and persists a batch of chunks.
	Add(ctx context.Context, entries []ChunkEntry) error

	// SimilaritySearch returns up to topK chunks similar to the query,
	// excluding results scoring below threshold.
	SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]SearchResult, error)

	// DeleteByDocument removes all chunks whose metadata document_id
	// matches. Deletion is best-effort; callers log failures and move on.
	DeleteByDocument(ctx context.Context, documentID string) error
}

// EmbedService generates embedding vectors for text.
type EmbedService interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatService is the hosted chat-completion collaborator.
type ChatService interface {
	// Complete sends a single-turn prompt and returns the model's text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextExtractor produces plain text from a file on disk. Extraction never
// fails past this boundary: unreadable or unparseable files degrade to an
// empty string and the caller decides whether that is fatal.
type TextExtractor interface {
	Extract(ctx context.Context, path string) string
}

// Chunker splits extracted text into ordered segments sized for embedding.
type Chunker interface {
	Split(text string) []string
}

// DocumentStore persists document records.
type DocumentStore interface {
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	ListByType(ctx context.Context, t DocumentType) ([]Document, error)
	ListByProject(ctx context.Context, projectID int64) ([]Document, error)
	SearchTitle(ctx context.Context, query string) ([]Document, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id int64) error
}

// ReceiptAnalyzer is the contract of the receipt OCR collaborator. It is
// implemented outside this module; the pipeline only consumes its output.
type ReceiptAnalyzer interface {
	ExtractTotalAmount(ctx context.Context, imagePath string) (float64, error)
	ExtractReceiptData(ctx context.Context, imagePath string) (*ReceiptData, error)
}
