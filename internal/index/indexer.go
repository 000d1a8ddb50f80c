// Package index turns stored documents into searchable chunk embeddings.
package index

import (
	"context"
	"os"
	"strconv"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// DefaultBatchSize is how many chunks are embedded per request.
const DefaultBatchSize = 10

// Indexer extracts text from uploaded files, splits it into chunks and
// pushes the chunks into the vector store in fixed-size batches.
type Indexer struct {
	extractor core.TextExtractor
	chunker   core.Chunker
	store     core.VectorStore
	batchSize int
}

// New wires an indexer from its three stages. A batchSize of zero or less
// falls back to the default.
func New(extractor core.TextExtractor, chunker core.Chunker, store core.VectorStore, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		batchSize: batchSize,
	}
}

// Index extracts the document text and stores its chunk embeddings. It
// returns the extracted text so callers can persist it alongside the
// document record. Batches are written sequentially and indexing aborts on
// the first failed batch; chunks already written stay in the store.
func (ix *Indexer) Index(ctx context.Context, doc *core.Document, path string) (string, error) {
	text := ix.extractor.Extract(ctx, path)
	if text == "" {
		return "", &core.ExtractionError{Detail: extractionDetail(path)}
	}

	chunks := ix.chunker.Split(text)
	metadata := map[string]string{
		core.MetaDocumentID:  strconv.FormatInt(doc.ID, 10),
		core.MetaTitle:       doc.Title,
		core.MetaType:        string(doc.Type),
		core.MetaProjectID:   strconv.FormatInt(doc.ProjectID, 10),
		core.MetaProjectName: doc.ProjectName,
	}

	logger.Info("Indexing document %d (%s): %d chunks", doc.ID, doc.Title, len(chunks))

	totalBatches := (len(chunks) + ix.batchSize - 1) / ix.batchSize
	for batch := 0; batch < totalBatches; batch++ {
		start := batch * ix.batchSize
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		entries := make([]core.ChunkEntry, 0, end-start)
		for _, content := range chunks[start:end] {
			entries = append(entries, core.ChunkEntry{
				Content:  content,
				Metadata: metadata,
			})
		}

		if err := ix.store.Add(ctx, entries); err != nil {
			return text, &core.BatchError{Batch: batch + 1, Total: totalBatches, Err: err}
		}
	}

	return text, nil
}

// extractionDetail distinguishes an unreadable or empty file from a format
// the extractor cannot handle.
func extractionDetail(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "file is empty or corrupted"
	}
	return "unsupported format or empty content"
}
