package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies messages exchanged through the portal
type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeDocument       MessageType = "document"
	MessageTypeMeetingRequest MessageType = "meeting_request"
)

// IsValid returns true if the message type is one of the known types
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeDocument, MessageTypeMeetingRequest:
		return true
	}
	return false
}

// Message represents a message tagged to a family. A message where an advisor
// is sender or recipient establishes that advisor's association with the
// family for access decisions, regardless of the other party.
type Message struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Content      string      `json:"content" db:"content"`
	MessageType  MessageType `json:"message_type" db:"message_type"`
	SenderID     uuid.UUID   `json:"sender_id" db:"sender_id"`
	RecipientID  uuid.UUID   `json:"recipient_id" db:"recipient_id"`
	FamilyID     uuid.UUID   `json:"family_id" db:"family_id"`
	AttachmentID *uuid.UUID  `json:"attachment_id,omitempty" db:"attachment_id"`
	IsRead       bool        `json:"is_read" db:"is_read"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Message model
func (Message) TableName() string {
	return "messages"
}

// NewMessage creates a new Message instance
func NewMessage(content string, msgType MessageType, senderID, recipientID, familyID uuid.UUID) *Message {
	return &Message{
		ID:          uuid.New(),
		Content:     content,
		MessageType: msgType,
		SenderID:    senderID,
		RecipientID: recipientID,
		FamilyID:    familyID,
		CreatedAt:   time.Now().UTC(),
	}
}
