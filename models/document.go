package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType classifies documents stored for a family
type DocumentType string

const (
	DocumentTypeContract     DocumentType = "contract"
	DocumentTypeReport       DocumentType = "report"
	DocumentTypeTaxReturn    DocumentType = "tax_return"
	DocumentTypeInvestment   DocumentType = "investment_document"
	DocumentTypeMeetingNotes DocumentType = "meeting_notes"
	DocumentTypeOther        DocumentType = "other"
)

// IsValid returns true if the document type is one of the known types
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeContract, DocumentTypeReport, DocumentTypeTaxReturn,
		DocumentTypeInvestment, DocumentTypeMeetingNotes, DocumentTypeOther:
		return true
	}
	return false
}

// Document represents a file stored for a family. The file body itself is kept
// as base64 text in the store and never passes through the access engine.
type Document struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	Filename         string       `json:"filename" db:"filename"`
	OriginalFilename string       `json:"original_filename" db:"original_filename"`
	FileSize         int64        `json:"file_size" db:"file_size"`
	ContentType      string       `json:"content_type" db:"content_type"`
	DocumentType     DocumentType `json:"document_type" db:"document_type"`
	FamilyID         uuid.UUID    `json:"family_id" db:"family_id"`
	UploadedBy       uuid.UUID    `json:"uploaded_by" db:"uploaded_by"`
	Tags             []string     `json:"tags" db:"tags"`
	Description      string       `json:"description,omitempty" db:"description"`
	// AccessPermissions, when non-empty, is an explicit allow-list of user ids
	// that narrows family-level access for this document.
	AccessPermissions []uuid.UUID `json:"access_permissions" db:"access_permissions"`
	IsActive          bool        `json:"is_active" db:"is_active"`
	UploadedAt        time.Time   `json:"uploaded_at" db:"uploaded_at"`
}

// TableName returns the table name for the Document model
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new Document instance
func NewDocument(filename string, size int64, contentType string, docType DocumentType, familyID, uploadedBy uuid.UUID) *Document {
	return &Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFilename: filename,
		FileSize:         size,
		ContentType:      contentType,
		DocumentType:     docType,
		FamilyID:         familyID,
		UploadedBy:       uploadedBy,
		IsActive:         true,
		UploadedAt:       time.Now().UTC(),
	}
}
