package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within a family office
type UserRole string

const (
	// RoleAdmin is the platform-wide administrator (owner of the tenant hierarchy)
	RoleAdmin UserRole = "admin"

	// RoleFamilyOfficeAdmin administers a single family office
	RoleFamilyOfficeAdmin UserRole = "family_office_admin"

	// RoleAdvisor works with families they have an established relationship with
	RoleAdvisor UserRole = "advisor"

	// RoleFamilyMember belongs to exactly one family
	RoleFamilyMember UserRole = "family_member"
)

// ValidRoles lists every role the system accepts
var ValidRoles = []UserRole{RoleAdmin, RoleFamilyOfficeAdmin, RoleAdvisor, RoleFamilyMember}

// IsValid returns true if the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFamilyOfficeAdmin, RoleAdvisor, RoleFamilyMember:
		return true
	}
	return false
}

// User represents an authenticated principal in the portal
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Role           UserRole   `json:"role" db:"role"`
	FamilyOfficeID uuid.UUID  `json:"family_office_id" db:"family_office_id"`
	FamilyID       *uuid.UUID `json:"family_id,omitempty" db:"family_id"` // required iff Role == family_member
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, firstName, lastName string, role UserRole, officeID uuid.UUID, familyID *uuid.UUID) *User {
	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           role,
		FamilyOfficeID: officeID,
		FamilyID:       familyID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAdmin returns true if the user has the platform admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsOfficeAdmin returns true if the user administers a family office
func (u *User) IsOfficeAdmin() bool {
	return u.Role == RoleFamilyOfficeAdmin
}
