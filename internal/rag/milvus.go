// Package rag provides the vector store used for document chunk embeddings.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// ChunkCollection is the Milvus collection holding document chunks.
const ChunkCollection = "document_chunks"

// DefaultEmbeddingDim is the default dimension for embedding vectors.
const DefaultEmbeddingDim = 1536

// Field names for the chunk collection.
const (
	FieldID          = "id"
	FieldContent     = "content"
	FieldDocumentID  = "document_id"
	FieldTitle       = "title"
	FieldDocType     = "doc_type"
	FieldProjectID   = "project_id"
	FieldProjectName = "project_name"
	FieldCreatedAt   = "created_at"
	FieldVector      = "vector"
)

// Ensure MilvusStore implements the interface.
var _ core.VectorStore = (*MilvusStore)(nil)

// MilvusStore persists chunk embeddings in Milvus and answers similarity
// queries. Embedding happens inside the store so callers only ever handle
// text and metadata.
type MilvusStore struct {
	client       *milvusclient.Client
	embedder     core.EmbedService
	embeddingDim int
}

// NewMilvusStore connects to Milvus and wraps it together with the
// embedding service.
func NewMilvusStore(ctx context.Context, addr string, embedder core.EmbedService, embeddingDim int) (*MilvusStore, error) {
	logger.Info("Connecting to Milvus at %s with dimension %d", addr, embeddingDim)

	if embeddingDim <= 0 {
		embeddingDim = DefaultEmbeddingDim
	}

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: addr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	return &MilvusStore{
		client:       c,
		embedder:     embedder,
		embeddingDim: embeddingDim,
	}, nil
}

// EnsureCollection creates and loads the chunk collection if it does not
// exist yet.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	hasOpt := milvusclient.NewHasCollectionOption(ChunkCollection)
	exists, err := s.client.HasCollection(ctx, hasOpt)
	if err != nil {
		return fmt.Errorf("failed to check if collection exists: %w", err)
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: ChunkCollection,
			Description:    "Document chunks for retrieval-augmented answering",
			Fields: []*entity.Field{
				{
					Name:       FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{"max_length": "100"},
				},
				{
					Name:       FieldContent,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "65535"},
				},
				{
					Name:       FieldDocumentID,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "100"},
				},
				{
					Name:       FieldTitle,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "1024"},
				},
				{
					Name:       FieldDocType,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "100"},
				},
				{
					Name:       FieldProjectID,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "100"},
				},
				{
					Name:       FieldProjectName,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "255"},
				},
				{
					Name:     FieldCreatedAt,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     FieldVector,
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.embeddingDim),
					},
				},
			},
		}

		createOpt := milvusclient.NewCreateCollectionOption(ChunkCollection, schema)
		if err := s.client.CreateCollection(ctx, createOpt); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		// Cosine metric so similarity scores land in [0, 1] and the
		// retrieval thresholds apply directly.
		idx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		indexOpt := milvusclient.NewCreateIndexOption(ChunkCollection, FieldVector, idx)
		if _, err := s.client.CreateIndex(ctx, indexOpt); err != nil {
			return fmt.Errorf("failed to create index on vector field: %w", err)
		}

		logger.Info("Created collection: %s", ChunkCollection)
	}

	loadOpt := milvusclient.NewLoadCollectionOption(ChunkCollection)
	if _, err := s.client.LoadCollection(ctx, loadOpt); err != nil {
		return fmt.Errorf("failed to load collection %s into memory: %w", ChunkCollection, err)
	}

	return nil
}

// Add embeds a batch of chunks and inserts them as one request.
func (s *MilvusStore) Add(ctx context.Context, entries []core.ChunkEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunk batch: %w", err)
	}

	now := time.Now().Unix()
	ids := make([]string, len(entries))
	contents := make([]string, len(entries))
	documentIDs := make([]string, len(entries))
	titles := make([]string, len(entries))
	docTypes := make([]string, len(entries))
	projectIDs := make([]string, len(entries))
	projectNames := make([]string, len(entries))
	createdAts := make([]int64, len(entries))

	for i, e := range entries {
		ids[i] = uuid.NewString()
		contents[i] = e.Content
		documentIDs[i] = e.Metadata[core.MetaDocumentID]
		titles[i] = e.Metadata[core.MetaTitle]
		docTypes[i] = e.Metadata[core.MetaType]
		projectIDs[i] = e.Metadata[core.MetaProjectID]
		projectNames[i] = e.Metadata[core.MetaProjectName]
		createdAts[i] = now
	}

	columns := []column.Column{
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnVarChar(FieldContent, contents),
		column.NewColumnVarChar(FieldDocumentID, documentIDs),
		column.NewColumnVarChar(FieldTitle, titles),
		column.NewColumnVarChar(FieldDocType, docTypes),
		column.NewColumnVarChar(FieldProjectID, projectIDs),
		column.NewColumnVarChar(FieldProjectName, projectNames),
		column.NewColumnInt64(FieldCreatedAt, createdAts),
		column.NewColumnFloatVector(FieldVector, s.embeddingDim, vectors),
	}

	insertOpt := milvusclient.NewColumnBasedInsertOption(ChunkCollection, columns...)
	if _, err := s.client.Insert(ctx, insertOpt); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	return nil
}

// SimilaritySearch embeds the query and runs an ANN search, dropping
// results below the similarity threshold.
func (s *MilvusStore) SimilaritySearch(ctx context.Context, query string, topK int, threshold float32) ([]core.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	searchOpt := milvusclient.NewSearchOption(ChunkCollection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldContent, FieldDocumentID, FieldTitle, FieldDocType, FieldProjectID, FieldProjectName)

	resultSets, err := s.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	var results []core.SearchResult
	for _, rs := range resultSets {
		for i := 0; i < rs.ResultCount; i++ {
			score := rs.Scores[i]
			if score < threshold {
				continue
			}

			id, err := rs.IDs.GetAsString(i)
			if err != nil {
				logger.Warn("Error reading result id at %d: %v", i, err)
				continue
			}

			metadata := map[string]string{
				core.MetaDocumentID:  columnString(rs, FieldDocumentID, i),
				core.MetaTitle:       columnString(rs, FieldTitle, i),
				core.MetaType:        columnString(rs, FieldDocType, i),
				core.MetaProjectID:   columnString(rs, FieldProjectID, i),
				core.MetaProjectName: columnString(rs, FieldProjectName, i),
			}

			results = append(results, core.SearchResult{
				ID:       id,
				Content:  columnString(rs, FieldContent, i),
				Metadata: metadata,
				Score:    score,
			})
		}
	}

	return results, nil
}

// DeleteByDocument removes all chunks of a document. Best-effort: Milvus
// supports filter deletes, but failures are reported to the caller only so
// they can be logged.
func (s *MilvusStore) DeleteByDocument(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf(`%s == "%s"`, FieldDocumentID, documentID)

	deleteOpt := milvusclient.NewDeleteOption(ChunkCollection).WithExpr(expr)
	result, err := s.client.Delete(ctx, deleteOpt)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}

	logger.Info("Deleted %d chunks for document %s", result.DeleteCount, documentID)
	return nil
}

// Close closes the connection to Milvus.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// columnString reads a string cell out of a search result set, tolerating
// missing columns.
func columnString(rs milvusclient.ResultSet, field string, i int) string {
	col := rs.GetColumn(field)
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return ""
	}
	return v
}
