package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/docstore"
	"github.com/korventis/sitedocs/internal/logger"
)

// uploadDocument accepts a multipart upload, stores the file under a UUID
// name, persists the record and indexes it synchronously. Indexing
// failures do not fail the upload; the error is recorded in the extracted
// text column instead.
func (s *Server) uploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	docType, ok := core.ParseDocumentType(c.PostForm("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document type"})
		return
	}

	var projectID int64
	if v := c.PostForm("projectId"); v != "" {
		projectID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
			return
		}
	}

	// Keep the original name in the record but never on disk.
	storedName := uuid.NewString() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(s.uploadDir, storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		logger.Error("Failed to save uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	doc := &core.Document{
		Title:       title,
		Description: c.PostForm("description"),
		Type:        docType,
		FileName:    file.Filename,
		FilePath:    storedPath,
		MimeType:    file.Header.Get("Content-Type"),
		FileSize:    file.Size,
		ProjectID:   projectID,
		ProjectName: c.PostForm("projectName"),
	}

	if err := s.docs.Save(c.Request.Context(), doc); err != nil {
		logger.Error("Failed to persist document record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save document"})
		return
	}

	extractedText, err := s.indexer.Index(c.Request.Context(), doc, storedPath)
	if err != nil {
		logger.Error("Failed to index document %d: %v", doc.ID, err)
		doc.ExtractedText = "Error: " + err.Error()
	} else {
		doc.ExtractedText = extractedText
	}

	if err := s.docs.Update(c.Request.Context(), doc); err != nil {
		logger.Error("Failed to store extracted text for document %d: %v", doc.ID, err)
	}

	c.JSON(http.StatusCreated, doc)
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.docs.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) getDocument(c *gin.Context) {
	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) listDocumentsByType(c *gin.Context) {
	docType, ok := core.ParseDocumentType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document type"})
		return
	}

	docs, err := s.docs.ListByType(c.Request.Context(), docType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) listDocumentsByProject(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("projectID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	docs, err := s.docs.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) searchDocuments(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	docs, err := s.docs.SearchTitle(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

type documentUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	ProjectID   *int64  `json:"projectId"`
	ProjectName *string `json:"projectName"`
}

// updateDocument edits record metadata only. The stored file and the
// indexed chunks are left untouched.
func (s *Server) updateDocument(c *gin.Context) {
	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}

	var update documentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if update.Title != nil {
		doc.Title = *update.Title
	}
	if update.Description != nil {
		doc.Description = *update.Description
	}
	if update.Type != nil {
		docType, ok := core.ParseDocumentType(*update.Type)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document type"})
			return
		}
		doc.Type = docType
	}
	if update.ProjectID != nil {
		doc.ProjectID = *update.ProjectID
	}
	if update.ProjectName != nil {
		doc.ProjectName = *update.ProjectName
	}

	if err := s.docs.Update(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update document"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// deleteDocument removes the record. Embeddings and the stored file are
// deleted best-effort: their failures are logged and the delete proceeds.
func (s *Server) deleteDocument(c *gin.Context) {
	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}

	docID := strconv.FormatInt(doc.ID, 10)
	if err := s.vectors.DeleteByDocument(c.Request.Context(), docID); err != nil {
		logger.Warn("Failed to delete embeddings for document %d: %v", doc.ID, err)
	}

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to delete stored file %s: %v", doc.FilePath, err)
	}

	if err := s.docs.Delete(c.Request.Context(), doc.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}
	c.Status(http.StatusNoContent)
}

// downloadDocument streams the stored file back. Filenames are encoded
// per RFC 5987 so Greek titles survive the Content-Disposition header.
// Inline rendering is offered for PDFs only.
func (s *Server) downloadDocument(c *gin.Context) {
	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}

	if _, err := os.Stat(doc.FilePath); err != nil {
		logger.Error("File not found on disk: %s", doc.FilePath)
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "attachment"
	if c.Query("inline") == "true" && contentType == "application/pdf" {
		disposition = "inline"
	}

	encoded := strings.ReplaceAll(url.QueryEscape(doc.FileName), "+", "%20")
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition",
		fmt.Sprintf("%s; filename*=UTF-8''%s", disposition, encoded))
	c.File(doc.FilePath)
}

type askRequest struct {
	Question  string `json:"question"`
	ProjectID *int64 `json:"projectId"`
}

// askQuestion answers a free-text question from the indexed documents.
func (s *Server) askQuestion(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	projectID := ""
	if req.ProjectID != nil {
		projectID = strconv.FormatInt(*req.ProjectID, 10)
	}

	answer, err := s.qa.Ask(c.Request.Context(), req.Question, projectID)
	if err != nil {
		logger.Error("Failed to answer question: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": req.Question,
		"answer":   answer,
	})
}

// loadDocument parses the :id param and fetches the record, writing the
// error response itself when either step fails.
func (s *Server) loadDocument(c *gin.Context) (*core.Document, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil, false
	}

	doc, err := s.docs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		}
		return nil, false
	}
	return doc, true
}
