package core

import "time"

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	TypeContract         DocumentType = "CONTRACT"
	TypeInvoice          DocumentType = "INVOICE"
	TypeBlueprint        DocumentType = "BLUEPRINT"
	TypePermit           DocumentType = "PERMIT"
	TypeTechnicalSpec    DocumentType = "TECHNICAL_SPEC"
	TypeInspectionReport DocumentType = "INSPECTION_REPORT"
	TypeOther            DocumentType = "OTHER"
)

// ParseDocumentType validates a document type string.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case TypeContract, TypeInvoice, TypeBlueprint, TypePermit,
		TypeTechnicalSpec, TypeInspectionReport, TypeOther:
		return DocumentType(s), true
	}
	return "", false
}

// Metadata keys attached to every indexed chunk. Consumers of retrieval
// results read these same keys back out.
const (
	MetaDocumentID  = "document_id"
	MetaTitle       = "title"
	MetaType        = "type"
	MetaProjectID   = "project_id"
	MetaProjectName = "project_name"
)

// Document represents an uploaded file tracked by the back office.
type Document struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Type          DocumentType `json:"type"`
	FileName      string       `json:"fileName"`
	FilePath      string       `json:"filePath"`
	MimeType      string       `json:"mimeType,omitempty"`
	FileSize      int64        `json:"fileSize"`
	ExtractedText string       `json:"extractedText,omitempty"`
	ProjectID     int64        `json:"projectId,omitempty"`
	ProjectName   string       `json:"projectName,omitempty"`
	UploadedAt    time.Time    `json:"uploadedAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ChunkEntry is a piece of extracted text with its metadata, the unit
// submitted to the vector store.
type ChunkEntry struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// SearchResult is one similarity hit returned by the vector store.
type SearchResult struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float32           `json:"score"`
}

// ReceiptData holds the structured fields the receipt OCR collaborator
// extracts from a receipt photo.
type ReceiptData struct {
	Vendor      string   `json:"vendor"`
	Date        string   `json:"date"`
	TotalAmount float64  `json:"totalAmount"`
	Items       []string `json:"items"`
	Tax         float64  `json:"tax"`
}
