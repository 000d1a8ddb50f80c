package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korventis/sitedocs/internal/auth"
	"github.com/korventis/sitedocs/internal/chunk"
	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/docstore"
	"github.com/korventis/sitedocs/internal/extract"
	"github.com/korventis/sitedocs/internal/index"
	"github.com/korventis/sitedocs/internal/qa"
	"github.com/korventis/sitedocs/internal/rag"
)

type stubChat struct {
	calls    int
	response string
}

func (c *stubChat) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.response, nil
}

type testEnv struct {
	router  *gin.Engine
	docs    *docstore.SQLiteStore
	vectors *rag.MockStore
	chat    *stubChat
}

func newTestEnv(t *testing.T, policy *auth.PolicyService) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs, err := docstore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	vectors := rag.NewMockStore()
	indexer := index.New(extract.New(), chunk.New(chunk.Config{}), vectors, 10)
	chat := &stubChat{response: "Η προθεσμία παράδοσης είναι 30 Ιουνίου 2026."}
	qaService := qa.NewService(qa.NewRetriever(vectors, 0, 0), qa.NewAnswerer(chat))

	if policy == nil {
		policy = auth.NewPolicyService("", "")
	}

	srv := New(docs, vectors, indexer, qaService, policy, t.TempDir())
	return &testEnv{router: srv.Router(), docs: docs, vectors: vectors, chat: chat}
}

func multipartUpload(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(fileContent)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadTextDocument(t *testing.T, env *testEnv, title, content string) core.Document {
	t.Helper()
	body, contentType := multipartUpload(t, map[string]string{
		"title":       title,
		"type":        "CONTRACT",
		"projectId":   "7",
		"projectName": "Ανακαίνιση γραφείων",
	}, "symvasi.txt", []byte(content))

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc core.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func TestUploadIndexesDocument(t *testing.T) {
	env := newTestEnv(t, nil)

	doc := uploadTextDocument(t, env, "Σύμβαση έργου",
		"Η προθεσμία παράδοσης του έργου είναι 30 Ιουνίου 2026.")

	assert.NotZero(t, doc.ID)
	assert.Equal(t, "Σύμβαση έργου", doc.Title)
	assert.Contains(t, doc.ExtractedText, "προθεσμία")
	assert.Positive(t, env.vectors.Len())

	// The stored file keeps the original extension but not the name.
	assert.NotContains(t, doc.FilePath, "symvasi")
	assert.Equal(t, ".txt", filepath.Ext(doc.FilePath))
	_, err := os.Stat(doc.FilePath)
	assert.NoError(t, err)
}

func TestUploadUnsupportedFormatStillSucceeds(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"title": "Φωτογραφία",
		"type":  "OTHER",
	}, "photo.bin", []byte{0x00, 0x01, 0x02, 0x03})

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc core.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.True(t, strings.HasPrefix(doc.ExtractedText, "Error: "), doc.ExtractedText)
	assert.Zero(t, env.vectors.Len())
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"title": "Χωρίς τύπο",
		"type":  "NOT_A_TYPE",
	}, "doc.txt", []byte("κείμενο"))

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDocumentNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/999", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndFilterDocuments(t *testing.T) {
	env := newTestEnv(t, nil)
	uploadTextDocument(t, env, "Σύμβαση έργου", "όροι σύμβασης")

	for _, path := range []string{
		"/api/documents",
		"/api/documents/type/CONTRACT",
		"/api/documents/project/7",
		"/api/documents/search?query=Σύμβαση",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var docs []core.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		assert.Len(t, docs, 1, path)
	}
}

func TestUpdateDocumentMetadata(t *testing.T) {
	env := newTestEnv(t, nil)
	doc := uploadTextDocument(t, env, "Παλιός τίτλος", "κείμενο εγγράφου")

	payload := `{"title": "Νέος τίτλος", "type": "PERMIT"}`
	req := httptest.NewRequest(http.MethodPut, "/api/documents/"+jsonID(doc.ID), strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated core.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Νέος τίτλος", updated.Title)
	assert.Equal(t, core.TypePermit, updated.Type)

	// Untouched fields survive a partial update.
	assert.Equal(t, doc.FileName, updated.FileName)
}

func TestDeleteDocumentCleansUp(t *testing.T) {
	env := newTestEnv(t, nil)
	doc := uploadTextDocument(t, env, "Σύμβαση", "περιεχόμενο σύμβασης")
	require.Positive(t, env.vectors.Len())

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+jsonID(doc.ID), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Zero(t, env.vectors.Len())
	_, err := os.Stat(doc.FilePath)
	assert.True(t, os.IsNotExist(err))

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+jsonID(doc.ID), nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadEncodesGreekFilename(t *testing.T) {
	env := newTestEnv(t, nil)
	doc := uploadTextDocument(t, env, "Σύμβαση", "περιεχόμενο")

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+jsonID(doc.ID)+"/download", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename*=UTF-8''"), disposition)
	assert.NotContains(t, disposition, "symvasi.txt\n")
	assert.Equal(t, "περιεχόμενο", rec.Body.String())
}

func TestAskBlankQuestionRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/ask", strings.NewReader(`{"question": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.chat.calls)
}

func TestAskWithNoDocuments(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/ask",
		strings.NewReader(`{"question": "Ποια είναι η προθεσμία παράδοσης;"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, qa.MsgNoResults, resp["answer"])
	assert.Zero(t, env.chat.calls)
}

func TestAskAnswersFromUploadedDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	uploadTextDocument(t, env, "Σύμβαση έργου",
		"Η προθεσμία παράδοσης του έργου είναι 30 Ιουνίου 2026.")

	req := httptest.NewRequest(http.MethodPost, "/api/documents/ask",
		strings.NewReader(`{"question": "Ποια είναι η προθεσμία παράδοσης του έργου", "projectId": 7}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Η προθεσμία παράδοσης είναι 30 Ιουνίου 2026.", resp["answer"])
	assert.Equal(t, "Ποια είναι η προθεσμία παράδοσης του έργου", resp["question"])
	assert.Equal(t, 1, env.chat.calls)
}

func TestPolicyBlocksUnknownKeys(t *testing.T) {
	env := newTestEnv(t, auth.NewPolicyService("admin-key", "reader-key"))

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("X-API-Key", "reader-key")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPolicyBlocksReaderWrites(t *testing.T) {
	env := newTestEnv(t, auth.NewPolicyService("admin-key", "reader-key"))

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil)
	req.Header.Set("X-API-Key", "reader-key")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}
