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

// SendMessageRequest represents a request to send a message
type SendMessageRequest struct {
	Content      string     `json:"content" validate:"required,min=1"`
	MessageType  string     `json:"message_type" validate:"required,oneof=text document meeting_request"`
	RecipientID  uuid.UUID  `json:"recipient_id" validate:"required"`
	FamilyID     uuid.UUID  `json:"family_id" validate:"required"`
	AttachmentID *uuid.UUID `json:"attachment_id,omitempty"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID           uuid.UUID  `json:"id"`
	Content      string     `json:"content"`
	MessageType  string     `json:"message_type"`
	SenderID     uuid.UUID  `json:"sender_id"`
	RecipientID  uuid.UUID  `json:"recipient_id"`
	FamilyID     uuid.UUID  `json:"family_id"`
	AttachmentID *uuid.UUID `json:"attachment_id,omitempty"`
	IsRead       bool       `json:"is_read"`
	CreatedAt    string     `json:"created_at"`
}

// MessageHandler handles message HTTP requests
type MessageHandler struct {
	messages repositories.MessageRepository
	engine   *access.Engine
	logger   *zap.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages repositories.MessageRepository, engine *access.Engine, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		engine:   engine,
		logger:   logger,
	}
}

// HandleSendMessage handles POST /api/messages. The sender must hold family
// access for the family the message is tagged to. Sending a message is one of
// the relations that later grants an advisor access to that family.
func (h *MessageHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req SendMessageRequest
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
		HandleServiceError(w, err, h.logger)
		return
	}
	if !allowed {
		_ = utils.WriteForbidden(w, "Access denied to this family")
		return
	}

	message := models.NewMessage(req.Content, models.MessageType(req.MessageType),
		user.ID, req.RecipientID, req.FamilyID)
	message.AttachmentID = req.AttachmentID

	if err := h.messages.Create(ctx, message); err != nil {
		h.logger.Error("failed to create message",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("message sent",
		zap.String("request_id", requestID),
		zap.String("message_id", message.ID.String()),
		zap.String("family_id", message.FamilyID.String()))

	_ = utils.WriteCreated(w, messageToResponse(message))
}

// HandleListMessages handles GET /api/messages. The caller only ever sees
// messages they sent or received, optionally narrowed by family_id or
// correspondent_id. A family_id filter must pass the family gate.
func (h *MessageHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	filter := repositories.MessageFilter{ParticipantID: user.ID}

	if familyIDStr := r.URL.Query().Get("family_id"); familyIDStr != "" {
		parsed, err := uuid.Parse(familyIDStr)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid family_id format", nil)
			return
		}

		allowed, err := h.engine.CanAccessFamily(ctx, user, parsed)
		if err != nil {
			HandleServiceError(w, err, h.logger)
			return
		}
		if !allowed {
			_ = utils.WriteForbidden(w, "Access denied to this family")
			return
		}
		filter.FamilyID = &parsed
	}
	if correspondentIDStr := r.URL.Query().Get("correspondent_id"); correspondentIDStr != "" {
		parsed, err := uuid.Parse(correspondentIDStr)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid correspondent_id format", nil)
			return
		}
		filter.CorrespondentID = &parsed
	}

	messages, err := h.messages.List(ctx, filter)
	if err != nil {
		h.logger.Error("failed to list messages",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = messageToResponse(m)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleMarkMessageRead handles POST /api/messages/{id}/read
func (h *MessageHandler) HandleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid message ID format", nil)
		return
	}

	if err := h.messages.MarkRead(ctx, messageID, user.ID); err != nil {
		h.logger.Warn("failed to mark message read",
			zap.String("request_id", requestID),
			zap.String("message_id", messageID.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// messageToResponse converts a Message model to a MessageResponse
func messageToResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:           m.ID,
		Content:      m.Content,
		MessageType:  string(m.MessageType),
		SenderID:     m.SenderID,
		RecipientID:  m.RecipientID,
		FamilyID:     m.FamilyID,
		AttachmentID: m.AttachmentID,
		IsRead:       m.IsRead,
		CreatedAt:    m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
