package rag

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

var _ core.VectorStore = (*MockStore)(nil)

// MockStore is an in-memory stand-in for Milvus used in development and
// tests. Similarity is approximated by token overlap between the query and
// the stored content, scaled into the same [0, 1] range cosine scores use.
type MockStore struct {
	mu      sync.RWMutex
	entries []mockEntry
}

type mockEntry struct {
	id       string
	content  string
	metadata map[string]string
}

// NewMockStore creates an empty mock vector store.
func NewMockStore() *MockStore {
	logger.Info("Using mock vector store (no Milvus connection)")
	return &MockStore{}
}

// Add stores the chunks without embedding them.
func (m *MockStore) Add(ctx context.Context, entries []core.ChunkEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		meta := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		m.entries = append(m.entries, mockEntry{
			id:       uuid.NewString(),
			content:  e.Content,
			metadata: meta,
		})
	}
	return nil
}

// SimilaritySearch scores stored chunks by token overlap with the query.
func (m *MockStore) SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	var results []core.SearchResult
	for _, e := range m.entries {
		content := strings.ToLower(e.content)
		matched := 0
		for _, t := range tokens {
			if strings.Contains(content, t) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		score := float32(matched) / float32(len(tokens))
		if score < threshold {
			continue
		}

		meta := make(map[string]string, len(e.metadata))
		for k, v := range e.metadata {
			meta[k] = v
		}
		results = append(results, core.SearchResult{
			ID:       e.id,
			Content:  e.content,
			Metadata: meta,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocument drops all chunks carrying the given document id.
func (m *MockStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.metadata[core.MetaDocumentID] != documentID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// Len reports how many chunks the store holds.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
