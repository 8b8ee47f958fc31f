package handlers

import (
	"encoding/json"
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

// CreateFamilyRequest represents a request to create a family
type CreateFamilyRequest struct {
	Name           string    `json:"name" validate:"required,min=1,max=255"`
	FamilyOfficeID uuid.UUID `json:"family_office_id" validate:"required"`
}

// FamilyResponse represents a family in API responses
type FamilyResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	FamilyOfficeID uuid.UUID `json:"family_office_id"`
	CreatedAt      string    `json:"created_at"`
}

// FamilyHandler handles family HTTP requests
type FamilyHandler struct {
	families repositories.FamilyRepository
	engine   *access.Engine
	logger   *zap.Logger
}

// NewFamilyHandler creates a new FamilyHandler
func NewFamilyHandler(families repositories.FamilyRepository, engine *access.Engine, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{
		families: families,
		engine:   engine,
		logger:   logger,
	}
}

// HandleCreateFamily handles POST /api/families. The route admits admins and
// office admins; an office admin may only create families in their own office.
func (h *FamilyHandler) HandleCreateFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if user.IsOfficeAdmin() && user.FamilyOfficeID != req.FamilyOfficeID {
		h.logger.Warn("cross-office family creation denied",
			zap.String("request_id", requestID),
			zap.String("user_id", user.ID.String()))
		_ = utils.WriteForbidden(w, "Cannot create families in another family office")
		return
	}

	family := models.NewFamily(req.Name, req.FamilyOfficeID)

	if err := h.families.Create(ctx, family); err != nil {
		h.logger.Error("failed to create family",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("family created",
		zap.String("request_id", requestID),
		zap.String("family_id", family.ID.String()))

	_ = utils.WriteCreated(w, familyToResponse(family))
}

// HandleListFamilies handles GET /api/families. Admins see every family,
// office admins and advisors see their office's families, and family members
// see only their own family.
func (h *FamilyHandler) HandleListFamilies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var families []*models.Family
	var err error

	switch {
	case user.IsAdmin():
		families, err = h.families.List(ctx)
	case user.Role == models.RoleFamilyMember:
		if user.FamilyID != nil {
			var family *models.Family
			family, err = h.families.GetByID(ctx, *user.FamilyID)
			if err == nil {
				families = []*models.Family{family}
			}
		}
	default:
		families, err = h.families.GetByOfficeID(ctx, user.FamilyOfficeID)
	}

	if err != nil {
		h.logger.Error("failed to list families",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]FamilyResponse, len(families))
	for i, f := range families {
		responses[i] = familyToResponse(f)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetFamily handles GET /api/families/{id}, gated by the access engine
func (h *FamilyHandler) HandleGetFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	familyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid family ID format", nil)
		return
	}

	allowed, err := h.engine.CanAccessFamily(ctx, user, familyID)
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

	family, err := h.families.GetByID(ctx, familyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, familyToResponse(family))
}

// familyToResponse converts a Family model to a FamilyResponse
func familyToResponse(f *models.Family) FamilyResponse {
	return FamilyResponse{
		ID:             f.ID,
		Name:           f.Name,
		FamilyOfficeID: f.FamilyOfficeID,
		CreatedAt:      f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
