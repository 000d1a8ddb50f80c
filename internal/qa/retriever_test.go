package qa

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korventis/sitedocs/internal/core"
)

// scriptedStore returns canned results per query and records every search.
type scriptedStore struct {
	byQuery map[string][]core.SearchResult
	queries []string
}

func (s *scriptedStore) Add(ctx context.Context, entries []core.ChunkEntry) error { return nil }

func (s *scriptedStore) SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]core.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.byQuery[query], nil
}

func (s *scriptedStore) DeleteByDocument(ctx context.Context, documentID string) error { return nil }

func result(id, content, projectID string) core.SearchResult {
	return core.SearchResult{
		ID:      id,
		Content: content,
		Metadata: map[string]string{
			core.MetaProjectID: projectID,
			core.MetaTitle:     "Έγγραφο " + id,
		},
		Score: 0.8,
	}
}

func manyResults(n int) []core.SearchResult {
	out := make([]core.SearchResult, n)
	for i := range out {
		out[i] = result(fmt.Sprintf("id-%d", i), "περιεχόμενο", "1")
	}
	return out
}

func TestRetrieveNoFallbackWhenEnoughResults(t *testing.T) {
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"ερώτηση δοκιμής": manyResults(5),
	}}
	r := NewRetriever(store, 0, 0)

	results, err := r.Retrieve(context.Background(), "ερώτηση δοκιμής", "")
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Only the original question was searched.
	assert.Equal(t, []string{"ερώτηση δοκιμής"}, store.queries)
}

func TestRetrieveFallbackFiresBelowFive(t *testing.T) {
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"προθεσμία παράδοσης": manyResults(4),
		"προθεσμία":           {result("kw-1", "η προθεσμία είναι αυστηρή", "1")},
		"παράδοσης":           {result("kw-2", "όροι παράδοσης υλικών", "1")},
	}}
	r := NewRetriever(store, 0, 0)

	results, err := r.Retrieve(context.Background(), "προθεσμία παράδοσης", "")
	require.NoError(t, err)
	assert.Len(t, results, 6)
	assert.Contains(t, store.queries, "προθεσμία")
	assert.Contains(t, store.queries, "παράδοσης")
}

func TestRetrieveFallbackDedupesByID(t *testing.T) {
	shared := result("id-0", "κοινό αποτέλεσμα με προθεσμία", "1")
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"ποια προθεσμία ισχύει": {shared, result("id-1", "άλλο", "1"), result("id-2", "τρίτο", "1")},
		"ποια":                  nil,
		"προθεσμία": {
			shared,
			result("kw-1", "νέα προθεσμία έργου", "1"),
			result("kw-2", "η προθεσμία ορίζεται", "1"),
		},
		"ισχύει": {result("kw-3", "τι ισχύει εδώ", "1")},
	}}
	r := NewRetriever(store, 0, 0)

	results, err := r.Retrieve(context.Background(), "ποια προθεσμία ισχύει", "")
	require.NoError(t, err)

	// 3 vector results plus 3 unique keyword hits; the shared id appears once.
	require.Len(t, results, 6)
	seen := make(map[string]int)
	for _, res := range results {
		seen[res.ID]++
	}
	assert.Equal(t, 1, seen["id-0"])
}

func TestKeywordSearchFiltersBySubstring(t *testing.T) {
	// The store returns a chunk that does not actually contain the keyword;
	// it must be dropped.
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"τιμολόγιο": {
			result("hit", "το τιμολόγιο εκδόθηκε", "1"),
			result("miss", "άσχετο περιεχόμενο", "1"),
		},
	}}
	r := NewRetriever(store, 0, 0)

	results := r.keywordSearch(context.Background(), "τιμολόγιο")
	require.Len(t, results, 1)
	assert.Equal(t, "hit", results[0].ID)
}

func TestExtractKeywordsSkipsStopwordsAndShortWords(t *testing.T) {
	r := NewRetriever(&scriptedStore{}, 0, 0)

	keywords := r.extractKeywords("Τι αναφέρει η σύμβαση για την προθεσμία;")
	assert.Equal(t, []string{"αναφέρει", "σύμβαση", "προθεσμία"}, keywords)
}

func TestRetrieveNoResults(t *testing.T) {
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{}}
	r := NewRetriever(store, 0, 0)

	_, err := r.Retrieve(context.Background(), "άγνωστη ερώτηση", "")
	assert.ErrorIs(t, err, core.ErrNoResults)
}

func TestRetrieveScopeFilter(t *testing.T) {
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"ερώτηση δοκιμής": {
			result("a", "x", "1"),
			result("b", "y", "2"),
			result("c", "z", "1"),
			result("d", "w", "1"),
			result("e", "v", "2"),
		},
	}}
	r := NewRetriever(store, 0, 0)

	results, err := r.Retrieve(context.Background(), "ερώτηση δοκιμής", "1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, "1", res.Metadata[core.MetaProjectID])
	}
}

func TestRetrieveScopeFilterEmptiesList(t *testing.T) {
	store := &scriptedStore{byQuery: map[string][]core.SearchResult{
		"ερώτηση δοκιμής": manyResults(5),
	}}
	r := NewRetriever(store, 0, 0)

	_, err := r.Retrieve(context.Background(), "ερώτηση δοκιμής", "999")
	assert.ErrorIs(t, err, core.ErrNoScopedResults)
}
