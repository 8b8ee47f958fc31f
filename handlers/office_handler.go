package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/utils"
)

// CreateOfficeRequest represents a request to create a family office
type CreateOfficeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description,omitempty"`
}

// OfficeResponse represents a family office in API responses
type OfficeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// OfficeHandler handles family office HTTP requests
type OfficeHandler struct {
	offices repositories.OfficeRepository
	logger  *zap.Logger
}

// NewOfficeHandler creates a new OfficeHandler
func NewOfficeHandler(offices repositories.OfficeRepository, logger *zap.Logger) *OfficeHandler {
	return &OfficeHandler{
		offices: offices,
		logger:  logger,
	}
}

// HandleCreateOffice handles POST /api/family-offices.
// Only platform admins reach this handler; the role gate is on the route.
func (h *OfficeHandler) HandleCreateOffice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	office := models.NewFamilyOffice(req.Name, req.Description)

	if err := h.offices.Create(ctx, office); err != nil {
		h.logger.Error("failed to create family office",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("family office created",
		zap.String("request_id", requestID),
		zap.String("office_id", office.ID.String()))

	_ = utils.WriteCreated(w, officeToResponse(office))
}

// HandleListOffices handles GET /api/family-offices. Platform admins see all
// offices; everyone else sees only the office they belong to.
func (h *OfficeHandler) HandleListOffices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var offices []*models.FamilyOffice
	if user.IsAdmin() {
		all, err := h.offices.List(ctx)
		if err != nil {
			h.logger.Error("failed to list family offices",
				zap.String("request_id", requestID),
				zap.Error(err))
			HandleServiceError(w, err, h.logger)
			return
		}
		offices = all
	} else {
		office, err := h.offices.GetByID(ctx, user.FamilyOfficeID)
		if err != nil {
			h.logger.Error("failed to get family office",
				zap.String("request_id", requestID),
				zap.Error(err))
			HandleServiceError(w, err, h.logger)
			return
		}
		offices = []*models.FamilyOffice{office}
	}

	responses := make([]OfficeResponse, len(offices))
	for i, o := range offices {
		responses[i] = officeToResponse(o)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetOffice handles GET /api/family-offices/{id}. Non-admins may only
// fetch their own office.
func (h *OfficeHandler) HandleGetOffice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	officeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid office ID format", nil)
		return
	}

	if !user.IsAdmin() && user.FamilyOfficeID != officeID {
		h.logger.Warn("cross-office access denied",
			zap.String("request_id", requestID),
			zap.String("user_id", user.ID.String()),
			zap.String("office_id", officeID.String()))
		_ = utils.WriteForbidden(w, "Access denied to this family office")
		return
	}

	office, err := h.offices.GetByID(ctx, officeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, officeToResponse(office))
}

// officeToResponse converts a FamilyOffice model to an OfficeResponse
func officeToResponse(o *models.FamilyOffice) OfficeResponse {
	return OfficeResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedAt:   o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
