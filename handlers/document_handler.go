package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/access"
	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/utils"
)

// maxUploadBytes caps the decoded size of an uploaded file at 50MB
const maxUploadBytes = 50 << 20

// UploadDocumentRequest represents a request to upload a document.
// The file body travels as base64 text.
type UploadDocumentRequest struct {
	Filename          string      `json:"filename" validate:"required,min=1,max=255"`
	ContentType       string      `json:"content_type" validate:"required"`
	DocumentType      string      `json:"document_type" validate:"required,oneof=contract report tax_return investment_document meeting_notes other"`
	FamilyID          uuid.UUID   `json:"family_id" validate:"required"`
	Description       string      `json:"description,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	AccessPermissions []uuid.UUID `json:"access_permissions,omitempty"`
	ContentBase64     string      `json:"content_base64" validate:"required"`
}

// DocumentResponse represents document metadata in API responses
type DocumentResponse struct {
	ID                uuid.UUID   `json:"id"`
	Filename          string      `json:"filename"`
	OriginalFilename  string      `json:"original_filename"`
	FileSize          int64       `json:"file_size"`
	ContentType       string      `json:"content_type"`
	DocumentType      string      `json:"document_type"`
	FamilyID          uuid.UUID   `json:"family_id"`
	UploadedBy        uuid.UUID   `json:"uploaded_by"`
	Tags              []string    `json:"tags"`
	Description       string      `json:"description,omitempty"`
	AccessPermissions []uuid.UUID `json:"access_permissions"`
	UploadedAt        string      `json:"uploaded_at"`
}

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	documents repositories.DocumentRepository
	engine    *access.Engine
	logger    *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents repositories.DocumentRepository, engine *access.Engine, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		engine:    engine,
		logger:    logger,
	}
}

// HandleUploadDocument handles POST /api/documents
func (h *DocumentHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	allowed, err := h.engine.CanAccessFamily(ctx, user, req.FamilyID)
	if err != nil {
		h.logger.Error("family access check failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this family")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid base64 file content", nil)
		return
	}
	if len(content) > maxUploadBytes {
		_ = utils.WritePayloadTooLarge(w,
			fmt.Sprintf("File exceeds maximum size of %d bytes", maxUploadBytes))
		return
	}

	doc := models.NewDocument(req.Filename, int64(len(content)), req.ContentType,
		models.DocumentType(req.DocumentType), req.FamilyID, user.ID)
	doc.Description = req.Description
	doc.Tags = req.Tags
	doc.AccessPermissions = req.AccessPermissions

	if err := h.documents.Create(ctx, doc, req.ContentBase64); err != nil {
		h.logger.Error("failed to create document",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("document uploaded",
		zap.String("request_id", requestID),
		zap.String("document_id", doc.ID.String()),
		zap.String("family_id", doc.FamilyID.String()),
		zap.Int64("file_size", doc.FileSize))

	_ = utils.WriteCreated(w, documentToResponse(doc))
}

// HandleListDocuments handles GET /api/documents. The listing is scoped to a
// single family: members default to their own, everyone else names one with
// the family_id query parameter. Documents carrying an allow-list the caller
// is not on are filtered out of the result.
func (h *DocumentHandler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var familyID uuid.UUID
	if familyIDStr := r.URL.Query().Get("family_id"); familyIDStr != "" {
		parsed, err := uuid.Parse(familyIDStr)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid family_id format", nil)
			return
		}
		familyID = parsed
	} else if user.Role == models.RoleFamilyMember && user.FamilyID != nil {
		familyID = *user.FamilyID
	} else {
		_ = utils.WriteBadRequest(w, "family_id is required", nil)
		return
	}

	allowed, err := h.engine.CanAccessFamily(ctx, user, familyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this family")
		return
	}

	filter := repositories.DocumentFilter{FamilyID: &familyID}
	if docTypeStr := r.URL.Query().Get("document_type"); docTypeStr != "" {
		docType := models.DocumentType(docTypeStr)
		if !docType.IsValid() {
			_ = utils.WriteBadRequest(w, "Invalid document_type", nil)
			return
		}
		filter.DocumentType = &docType
	}

	docs, err := h.documents.List(ctx, filter)
	if err != nil {
		h.logger.Error("failed to list documents",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		ok, err := h.engine.CanAccessDocument(ctx, user, access.RefForDocument(doc))
		if err != nil {
			HandleServiceError(w, err, h.logger)
			return
		}
		if ok {
			responses = append(responses, documentToResponse(doc))
		}
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetDocument handles GET /api/documents/{id}
func (h *DocumentHandler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	doc, ok := h.fetchAuthorized(w, r, user)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, documentToResponse(doc))
}

// HandleDownloadDocument handles GET /api/documents/{id}/download. The stored
// base64 body is decoded and served with the original content type.
func (h *DocumentHandler) HandleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	doc, ok := h.fetchAuthorized(w, r, user)
	if !ok {
		return
	}

	contentBase64, err := h.documents.GetContent(ctx, doc.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	content, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		h.logger.Error("stored document content is not valid base64",
			zap.String("request_id", requestID),
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to decode document content")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// fetchAuthorized parses the document id, fetches its metadata and runs the
// document gate. It writes the response on failure and reports success.
func (h *DocumentHandler) fetchAuthorized(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Document, bool) {
	ctx := r.Context()

	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid document ID format", nil)
		return nil, false
	}

	doc, err := h.documents.GetByID(ctx, docID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return nil, false
	}

	allowed, err := h.engine.CanAccessDocument(ctx, user, access.RefForDocument(doc))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return nil, false
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this document")
		return nil, false
	}

	return doc, true
}

// documentToResponse converts a Document model to a DocumentResponse
func documentToResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:                d.ID,
		Filename:          d.Filename,
		OriginalFilename:  d.OriginalFilename,
		FileSize:          d.FileSize,
		ContentType:       d.ContentType,
		DocumentType:      string(d.DocumentType),
		FamilyID:          d.FamilyID,
		UploadedBy:        d.UploadedBy,
		Tags:              d.Tags,
		Description:       d.Description,
		AccessPermissions: d.AccessPermissions,
		UploadedAt:        d.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
