package models

import (
	"time"

	"github.com/google/uuid"
)

// Family is a client unit within a family office. It is the unit of data
// partitioning for documents, meetings and messages.
type Family struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	FamilyOfficeID uuid.UUID `json:"family_office_id" db:"family_office_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Family model
func (Family) TableName() string {
	return "families"
}

// NewFamily creates a new Family instance
func NewFamily(name string, officeID uuid.UUID) *Family {
	now := time.Now().UTC()
	return &Family{
		ID:             uuid.New(),
		Name:           name,
		FamilyOfficeID: officeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
