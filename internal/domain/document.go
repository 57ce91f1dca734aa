package domain

import (
	"fmt"
	"time"
)

// DocumentType categorizes a commitment document
type DocumentType string

const (
	DocumentTypeESGReport     DocumentType = "esg_report"
	DocumentTypeCodeOfConduct DocumentType = "code_of_conduct"
	DocumentTypeMission       DocumentType = "mission_statement"
	DocumentTypeSustainability DocumentType = "sustainability_report"
	DocumentTypeOther         DocumentType = "other"
)

// Document represents an uploaded commitment document. Once its passages
// are embedded the document is immutable.
type Document struct {
	ID        string
	CompanyID string
	Type      DocumentType
	Title     string
	Content   string
	Passages  []Passage
	CreatedAt time.Time
}

// Passage is a retrievable unit of document text with a precomputed
// embedding. Embeddings are computed once at ingestion and cached with
// the passage.
type Passage struct {
	ID         string
	DocumentID string
	CompanyID  string
	Index      int
	Text       string
	Embedding  []float32
}

// NewDocument creates a new Document instance
func NewDocument(id, companyID string, docType DocumentType, title, content string, createdAt time.Time) *Document {
	return &Document{
		ID:        id,
		CompanyID: companyID,
		Type:      docType,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.CompanyID == "" {
		return fmt.Errorf("document CompanyID is required")
	}

	if d.Content == "" {
		return fmt.Errorf("document Content is required")
	}

	if !isValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	return nil
}

// isValidDocumentType checks if a DocumentType is valid
func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypeESGReport, DocumentTypeCodeOfConduct, DocumentTypeMission,
		DocumentTypeSustainability, DocumentTypeOther:
		return true
	}
	return false
}
