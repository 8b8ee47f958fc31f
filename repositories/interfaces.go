package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/stonebridge/family-office-portal/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations. It is the principal directory
// the auth middleware resolves token subjects against.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByOfficeID retrieves all users for a family office
	GetByOfficeID(ctx context.Context, officeID uuid.UUID) ([]*models.User, error)

	// Update updates a user's mutable fields (role, active flag, names)
	Update(ctx context.Context, user *models.User) error

	// Deactivate flips a user's active flag to false (soft delete)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// OfficeRepository handles family office data operations
type OfficeRepository interface {
	// Create creates a new family office
	Create(ctx context.Context, office *models.FamilyOffice) error

	// GetByID retrieves a family office by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.FamilyOffice, error)

	// List retrieves all family offices
	List(ctx context.Context) ([]*models.FamilyOffice, error)
}

// FamilyRepository handles family data operations
type FamilyRepository interface {
	// Create creates a new family
	Create(ctx context.Context, family *models.Family) error

	// GetByID retrieves a family by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error)

	// List retrieves all families
	List(ctx context.Context) ([]*models.Family, error)

	// GetByOfficeID retrieves all families for a family office
	GetByOfficeID(ctx context.Context, officeID uuid.UUID) ([]*models.Family, error)
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	FamilyID     *uuid.UUID
	DocumentType *models.DocumentType
}

// DocumentRepository handles document metadata and content operations.
// Content is stored as base64 text keyed by document id.
type DocumentRepository interface {
	// Create stores a new document record with its base64 content
	Create(ctx context.Context, doc *models.Document, contentBase64 string) error

	// GetByID retrieves a document's metadata by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)

	// GetContent retrieves a document's base64 content by ID
	GetContent(ctx context.Context, id uuid.UUID) (string, error)

	// List retrieves documents matching the filter
	List(ctx context.Context, filter DocumentFilter) ([]*models.Document, error)
}

// MeetingFilter narrows meeting listings
type MeetingFilter struct {
	FamilyID  *uuid.UUID
	AdvisorID *uuid.UUID
	Status    *models.MeetingStatus
}

// MeetingRepository handles meeting data operations
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *models.Meeting) error

	// GetByID retrieves a meeting by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)

	// List retrieves meetings matching the filter
	List(ctx context.Context, filter MeetingFilter) ([]*models.Meeting, error)

	// Update updates a meeting
	Update(ctx context.Context, meeting *models.Meeting) error
}

// MessageFilter narrows message listings. ParticipantID scopes to messages
// where the user is sender or recipient; CorrespondentID additionally scopes
// to the conversation between the two users.
type MessageFilter struct {
	ParticipantID   uuid.UUID
	FamilyID        *uuid.UUID
	CorrespondentID *uuid.UUID
}

// MessageRepository handles message data operations
type MessageRepository interface {
	// Create creates a new message
	Create(ctx context.Context, message *models.Message) error

	// List retrieves messages matching the filter, newest first
	List(ctx context.Context, filter MessageFilter) ([]*models.Message, error)

	// MarkRead marks a message as read. Only the recipient may do so.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

// RelationshipRepository answers the access engine's existence queries over
// the derived advisor-family relations. It satisfies access.RelationshipIndex.
type RelationshipRepository interface {
	// CountMeetingFacts counts meetings between an advisor and a family
	CountMeetingFacts(ctx context.Context, advisorID, familyID uuid.UUID) (int, error)

	// CountMessageFacts counts family-scoped messages where the principal
	// is sender or recipient
	CountMessageFacts(ctx context.Context, principalID, familyID uuid.UUID) (int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Offices       OfficeRepository
	Families      FamilyRepository
	Documents     DocumentRepository
	Meetings      MeetingRepository
	Messages      MessageRepository
	Relationships RelationshipRepository
}
