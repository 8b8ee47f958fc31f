package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus tracks the lifecycle of a scheduled meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusConfirmed MeetingStatus = "confirmed"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// IsValid returns true if the status is one of the known statuses
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusScheduled, MeetingStatusConfirmed, MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

// Meeting represents a meeting between an advisor and a family. Meetings are
// one of the two relations that establish an advisor's association with a
// family for access decisions.
type Meeting struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description,omitempty" db:"description"`
	StartTime   time.Time     `json:"start_time" db:"start_time"`
	EndTime     time.Time     `json:"end_time" db:"end_time"`
	FamilyID    uuid.UUID     `json:"family_id" db:"family_id"`
	AdvisorID   uuid.UUID     `json:"advisor_id" db:"advisor_id"`
	Attendees   []uuid.UUID   `json:"attendees" db:"attendees"`
	Status      MeetingStatus `json:"status" db:"status"`
	MeetingLink string        `json:"meeting_link,omitempty" db:"meeting_link"`
	Notes       string        `json:"notes,omitempty" db:"notes"`
	ActionItems []string      `json:"action_items" db:"action_items"`
	CreatedBy   uuid.UUID     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Meeting model
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new Meeting instance in the scheduled state
func NewMeeting(title string, start, end time.Time, familyID, advisorID, createdBy uuid.UUID) *Meeting {
	now := time.Now().UTC()
	return &Meeting{
		ID:        uuid.New(),
		Title:     title,
		StartTime: start,
		EndTime:   end,
		FamilyID:  familyID,
		AdvisorID: advisorID,
		Status:    MeetingStatusScheduled,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
