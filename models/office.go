package models

import (
	"time"

	"github.com/google/uuid"
)

// FamilyOffice is the top-level tenant boundary. It owns zero or more families.
type FamilyOffice struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the FamilyOffice model
func (FamilyOffice) TableName() string {
	return "family_offices"
}

// NewFamilyOffice creates a new FamilyOffice instance
func NewFamilyOffice(name, description string) *FamilyOffice {
	now := time.Now().UTC()
	return &FamilyOffice{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
