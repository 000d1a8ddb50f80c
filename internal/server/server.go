// Package server exposes the document service over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/korventis/sitedocs/internal/auth"
	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/index"
	"github.com/korventis/sitedocs/internal/logger"
	"github.com/korventis/sitedocs/internal/qa"
)

// Server holds the wired service dependencies behind the HTTP handlers.
type Server struct {
	docs      core.DocumentStore
	vectors   core.VectorStore
	indexer   *index.Indexer
	qa        *qa.Service
	policy    *auth.PolicyService
	uploadDir string
}

// New assembles a server from its collaborators.
func New(docs core.DocumentStore, vectors core.VectorStore, indexer *index.Indexer, qaService *qa.Service, policy *auth.PolicyService, uploadDir string) *Server {
	return &Server{
		docs:      docs,
		vectors:   vectors,
		indexer:   indexer,
		qa:        qaService,
		policy:    policy,
		uploadDir: uploadDir,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), s.apiKeyPolicy())

	api := r.Group("/api/documents")
	{
		api.POST("", s.uploadDocument)
		api.GET("", s.listDocuments)
		api.GET("/:id", s.getDocument)
		api.GET("/type/:type", s.listDocumentsByType)
		api.GET("/project/:projectID", s.listDocumentsByProject)
		api.GET("/search", s.searchDocuments)
		api.PUT("/:id", s.updateDocument)
		api.DELETE("/:id", s.deleteDocument)
		api.GET("/:id/download", s.downloadDocument)
		api.POST("/ask", s.askQuestion)
	}

	return r
}

// accessLog writes one line per request through the service logger.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// apiKeyPolicy enforces the configured key lists. Reads need an allowed
// key, mutations need a write-capable one. The key arrives in X-API-Key.
func (s *Server) apiKeyPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")

		if !s.policy.IsAllowed(key) {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid API key"})
			return
		}

		switch c.Request.Method {
		case "POST", "PUT", "DELETE":
			if !s.policy.IsWriteAllowed(key) {
				c.AbortWithStatusJSON(403, gin.H{"error": "write access denied"})
				return
			}
		}

		c.Next()
	}
}
