package core

import (
	"errors"
	"fmt"
)

// ErrNoResults signals that retrieval produced no chunks at all. It is a
// terminal state, not a failure.
var ErrNoResults = errors.New("no relevant chunks found")

// ErrNoScopedResults signals that retrieval produced chunks, but none
// survived the project scope filter.
var ErrNoScopedResults = errors.New("no relevant chunks in requested scope")

// ExtractionError indicates that no usable text could be extracted from a
// document. It aborts indexing.
type ExtractionError struct {
	Detail string
}

func (e *ExtractionError) Error() string {
	return "failed to extract text from document: " + e.Detail
}

// BatchError indicates that the vector store rejected one batch of chunks.
// The whole indexing operation is aborted; batches submitted before the
// failing one remain in the store.
type BatchError struct {
	Batch int
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to create embeddings for batch %d/%d: %v", e.Batch, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
