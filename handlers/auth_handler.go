package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/services"
	"github.com/stonebridge/family-office-portal/utils"
)

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	FirstName      string     `json:"first_name" validate:"required"`
	LastName       string     `json:"last_name" validate:"required"`
	Role           string     `json:"role" validate:"required,oneof=admin family_office_admin advisor family_member"`
	FamilyOfficeID uuid.UUID  `json:"family_office_id" validate:"required"`
	FamilyID       *uuid.UUID `json:"family_id,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           string     `json:"role"`
	FamilyOfficeID uuid.UUID  `json:"family_office_id"`
	FamilyID       *uuid.UUID `json:"family_id,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      string     `json:"created_at"`
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user := models.NewUser(req.Email, req.FirstName, req.LastName,
		models.UserRole(req.Role), req.FamilyOfficeID, req.FamilyID)

	created, err := h.auth.Register(ctx, user, req.Password)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user registered",
		zap.String("request_id", requestID),
		zap.String("user_id", created.ID.String()))

	_ = utils.WriteCreated(w, userToResponse(created))
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, token, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user logged in",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID.String()))

	_ = utils.WriteOK(w, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        userToResponse(user),
	})
}

// HandleMe handles GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// userToResponse converts a User model to a UserResponse
func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           string(u.Role),
		FamilyOfficeID: u.FamilyOfficeID,
		FamilyID:       u.FamilyID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
