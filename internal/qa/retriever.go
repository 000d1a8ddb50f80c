// Package qa answers user questions from indexed document chunks.
package qa

import (
	"context"
	"strings"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// Retrieval defaults. The wide topK and low threshold deliberately
// over-fetch so related information split across chunks is captured.
const (
	DefaultTopK      = 15
	DefaultThreshold = 0.4

	// Keyword fallback kicks in when the vector search returns fewer
	// results than this.
	fallbackMinResults = 5
	keywordTopK        = 5
	keywordThreshold   = 0.3
	minKeywordLen      = 4
)

// Retriever finds chunks relevant to a question. Vector similarity is the
// primary strategy; a keyword pass over the same store backfills when the
// vector search comes up short, which happens often with short Greek
// queries.
type Retriever struct {
	store     core.VectorStore
	topK      int
	threshold float32
	stopwords map[string]struct{}
}

// NewRetriever builds a retriever over the given store. Zero values for
// topK and threshold select the defaults.
func NewRetriever(store core.VectorStore, topK int, threshold float32) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	stop := make(map[string]struct{}, len(defaultStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}

	return &Retriever{
		store:     store,
		topK:      topK,
		threshold: threshold,
		stopwords: stop,
	}
}

// Retrieve returns the chunks relevant to the question, optionally
// restricted to one project. A non-empty projectID is compared as a string
// against chunk metadata. ErrNoResults means nothing matched at all;
// ErrNoScopedResults means matches existed but none in the requested
// project.
func (r *Retriever) Retrieve(ctx context.Context, question, projectID string) ([]core.SearchResult, error) {
	results, err := r.store.SimilaritySearch(ctx, question, r.topK, r.threshold)
	if err != nil {
		return nil, err
	}
	logger.Info("Vector search returned %d chunks", len(results))

	if len(results) < fallbackMinResults {
		logger.Info("Vector search returned few results, trying keyword-based fallback")
		keywordResults := r.keywordSearch(ctx, question)
		logger.Info("Keyword search returned %d additional chunks", len(keywordResults))
		results = mergeResults(results, keywordResults)
	}

	if len(results) == 0 {
		return nil, core.ErrNoResults
	}

	if projectID != "" {
		before := len(results)
		filtered := results[:0]
		for _, res := range results {
			if res.Metadata[core.MetaProjectID] == projectID {
				filtered = append(filtered, res)
			}
		}
		results = filtered
		logger.Info("After project filter: %d -> %d chunks", before, len(results))

		if len(results) == 0 {
			return nil, core.ErrNoScopedResults
		}
	}

	return results, nil
}

// keywordSearch extracts keywords from the question and searches the
// store once per keyword, keeping only chunks whose content actually
// contains the keyword.
func (r *Retriever) keywordSearch(ctx context.Context, question string) []core.SearchResult {
	keywords := r.extractKeywords(question)
	logger.Info("Extracted keywords: %v", keywords)
	if len(keywords) == 0 {
		return nil
	}

	var results []core.SearchResult
	seen := make(map[string]struct{})

	for _, keyword := range keywords {
		docs, err := r.store.SimilaritySearch(ctx, keyword, keywordTopK, keywordThreshold)
		if err != nil {
			logger.Warn("Keyword search failed for %q: %v", keyword, err)
			continue
		}

		for _, doc := range docs {
			if !strings.Contains(strings.ToLower(doc.Content), keyword) {
				continue
			}
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			results = append(results, doc)
		}
	}

	return results
}

// extractKeywords lowercases the question, strips punctuation and keeps
// words of at least minKeywordLen characters that are not stopwords.
func (r *Retriever) extractKeywords(question string) []string {
	cleaned := strings.Map(func(ch rune) rune {
		switch ch {
		case '.', ',', ';', ':', '!', '?':
			return -1
		}
		return ch
	}, strings.ToLower(question))

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) < minKeywordLen {
			continue
		}
		if _, stop := r.stopwords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// mergeResults appends extras to base, skipping chunk ids already present.
func mergeResults(base, extras []core.SearchResult) []core.SearchResult {
	seen := make(map[string]struct{}, len(base))
	for _, res := range base {
		seen[res.ID] = struct{}{}
	}
	for _, res := range extras {
		if _, ok := seen[res.ID]; ok {
			continue
		}
		seen[res.ID] = struct{}{}
		base = append(base, res)
	}
	return base
}
