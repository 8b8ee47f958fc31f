package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/access"
	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/utils"
)

// CreateMeetingRequest represents a request to schedule a meeting
type CreateMeetingRequest struct {
	Title       string      `json:"title" validate:"required,min=1,max=255"`
	Description string      `json:"description,omitempty"`
	StartTime   time.Time   `json:"start_time" validate:"required"`
	EndTime     time.Time   `json:"end_time" validate:"required"`
	FamilyID    uuid.UUID   `json:"family_id" validate:"required"`
	AdvisorID   uuid.UUID   `json:"advisor_id" validate:"required"`
	Attendees   []uuid.UUID `json:"attendees,omitempty"`
	MeetingLink string      `json:"meeting_link,omitempty"`
}

// UpdateMeetingRequest represents a request to update a meeting
type UpdateMeetingRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	MeetingLink *string    `json:"meeting_link,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	ActionItems []string   `json:"action_items,omitempty"`
}

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	FamilyID    uuid.UUID   `json:"family_id"`
	AdvisorID   uuid.UUID   `json:"advisor_id"`
	Attendees   []uuid.UUID `json:"attendees"`
	Status      string      `json:"status"`
	MeetingLink string      `json:"meeting_link,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	ActionItems []string    `json:"action_items"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   string      `json:"created_at"`
}

// MeetingHandler handles meeting HTTP requests
type MeetingHandler struct {
	meetings repositories.MeetingRepository
	engine   *access.Engine
	logger   *zap.Logger
}

// NewMeetingHandler creates a new MeetingHandler
func NewMeetingHandler(meetings repositories.MeetingRepository, engine *access.Engine, logger *zap.Logger) *MeetingHandler {
	return &MeetingHandler{
		meetings: meetings,
		engine:   engine,
		logger:   logger,
	}
}

// HandleCreateMeeting handles POST /api/meetings
func (h *MeetingHandler) HandleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if !req.EndTime.After(req.StartTime) {
		_ = utils.WriteBadRequest(w, "end_time must be after start_time", nil)
		return
	}

	allowed, err := h.engine.CanAccessFamily(ctx, user, req.FamilyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this family")
		return
	}

	meeting := models.NewMeeting(req.Title, req.StartTime, req.EndTime,
		req.FamilyID, req.AdvisorID, user.ID)
	meeting.Description = req.Description
	meeting.Attendees = req.Attendees
	meeting.MeetingLink = req.MeetingLink

	if err := h.meetings.Create(ctx, meeting); err != nil {
		h.logger.Error("failed to create meeting",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("meeting created",
		zap.String("request_id", requestID),
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("family_id", meeting.FamilyID.String()))

	_ = utils.WriteCreated(w, meetingToResponse(meeting))
}

// HandleListMeetings handles GET /api/meetings. Advisors see meetings they
// advise, family members see their family's meetings, and administrators may
// narrow by family_id or advisor_id query parameters.
func (h *MeetingHandler) HandleListMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var filter repositories.MeetingFilter

	switch user.Role {
	case models.RoleAdvisor:
		filter.AdvisorID = &user.ID
	case models.RoleFamilyMember:
		if user.FamilyID == nil {
			_ = utils.WriteForbidden(w, "No family assigned")
			return
		}
		filter.FamilyID = user.FamilyID
	default:
		if familyIDStr := r.URL.Query().Get("family_id"); familyIDStr != "" {
			parsed, err := uuid.Parse(familyIDStr)
			if err != nil {
				_ = utils.WriteBadRequest(w, "Invalid family_id format", nil)
				return
			}
			filter.FamilyID = &parsed
		}
		if advisorIDStr := r.URL.Query().Get("advisor_id"); advisorIDStr != "" {
			parsed, err := uuid.Parse(advisorIDStr)
			if err != nil {
				_ = utils.WriteBadRequest(w, "Invalid advisor_id format", nil)
				return
			}
			filter.AdvisorID = &parsed
		}
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.MeetingStatus(statusStr)
		if !status.IsValid() {
			_ = utils.WriteBadRequest(w, "Invalid status", nil)
			return
		}
		filter.Status = &status
	}

	meetings, err := h.meetings.List(ctx, filter)
	if err != nil {
		h.logger.Error("failed to list meetings",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]MeetingResponse, len(meetings))
	for i, m := range meetings {
		responses[i] = meetingToResponse(m)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGetMeeting handles GET /api/meetings/{id}
func (h *MeetingHandler) HandleGetMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	meeting, ok := h.fetchAuthorized(w, r, user)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, meetingToResponse(meeting))
}

// HandleUpdateMeeting handles PATCH /api/meetings/{id}
func (h *MeetingHandler) HandleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	meeting, ok := h.fetchAuthorized(w, r, user)
	if !ok {
		return
	}

	if req.Title != nil {
		meeting.Title = *req.Title
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}
	if req.StartTime != nil {
		meeting.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		meeting.EndTime = *req.EndTime
	}
	if req.Status != nil {
		meeting.Status = models.MeetingStatus(*req.Status)
	}
	if req.MeetingLink != nil {
		meeting.MeetingLink = *req.MeetingLink
	}
	if req.Notes != nil {
		meeting.Notes = *req.Notes
	}
	if req.ActionItems != nil {
		meeting.ActionItems = req.ActionItems
	}

	if !meeting.EndTime.After(meeting.StartTime) {
		_ = utils.WriteBadRequest(w, "end_time must be after start_time", nil)
		return
	}

	if err := h.meetings.Update(ctx, meeting); err != nil {
		h.logger.Error("failed to update meeting",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("meeting updated",
		zap.String("request_id", requestID),
		zap.String("meeting_id", meeting.ID.String()))

	_ = utils.WriteOK(w, meetingToResponse(meeting))
}

// fetchAuthorized parses the meeting id, fetches the meeting and runs the
// family gate. It writes the response on failure and reports success.
func (h *MeetingHandler) fetchAuthorized(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Meeting, bool) {
	ctx := r.Context()

	meetingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid meeting ID format", nil)
		return nil, false
	}

	meeting, err := h.meetings.GetByID(ctx, meetingID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return nil, false
	}

	allowed, err := h.engine.CanAccessFamily(ctx, user, meeting.FamilyID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return nil, false
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this family")
		return nil, false
	}

	return meeting, true
}

// meetingToResponse converts a Meeting model to a MeetingResponse
func meetingToResponse(m *models.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		FamilyID:    m.FamilyID,
		AdvisorID:   m.AdvisorID,
		Attendees:   m.Attendees,
		Status:      string(m.Status),
		MeetingLink: m.MeetingLink,
		Notes:       m.Notes,
		ActionItems: m.ActionItems,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
