// Package access implements the portal's authorization decisions: the
// family-level gate, the document-level allow-list gate and the role guard.
// Decisions are pure functions over the principal and a resource reference;
// absence of permission is a false result, never an error.
package access

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
)

// RelationshipIndex answers existence queries over the two derived relations
// that associate an advisor with a family: meetings and family-scoped
// messages. The engine only ever needs "> 0".
type RelationshipIndex interface {
	// CountMeetingFacts counts meetings between an advisor and a family
	CountMeetingFacts(ctx context.Context, advisorID, familyID uuid.UUID) (int, error)

	// CountMessageFacts counts family-scoped messages where the principal
	// is sender or recipient
	CountMessageFacts(ctx context.Context, principalID, familyID uuid.UUID) (int, error)
}

// DocumentRef is the resource descriptor the engine needs about a document.
// It never requires the document body.
type DocumentRef struct {
	FamilyID          uuid.UUID
	AccessPermissions []uuid.UUID
}

// RefForDocument builds a DocumentRef from a stored document
func RefForDocument(doc *models.Document) DocumentRef {
	return DocumentRef{
		FamilyID:          doc.FamilyID,
		AccessPermissions: doc.AccessPermissions,
	}
}

// Engine decides whether a principal may access a family's resources
type Engine struct {
	index  RelationshipIndex
	logger *zap.Logger
}

// NewEngine creates a new access decision engine
func NewEngine(index RelationshipIndex, logger *zap.Logger) *Engine {
	return &Engine{
		index:  index,
		logger: logger,
	}
}

// CanAccessFamily reports whether the user may access resources belonging to
// the given family. The error return carries collaborator failures only; a
// deny is always (false, nil).
func (e *Engine) CanAccessFamily(ctx context.Context, user *models.User, familyID uuid.UUID) (bool, error) {
	switch user.Role {
	case models.RoleAdmin, models.RoleFamilyOfficeAdmin:
		// Office-wide administrators pass unconditionally. Office scoping is
		// enforced by list endpoints pre-filtering, not here, so a
		// family_office_admin is not checked against the family's owning
		// office. Known over-permission; kept to match current behavior.
		return true, nil

	case models.RoleFamilyMember:
		return user.FamilyID != nil && *user.FamilyID == familyID, nil

	case models.RoleAdvisor:
		meetings, err := e.index.CountMeetingFacts(ctx, user.ID, familyID)
		if err != nil {
			return false, err
		}
		if meetings > 0 {
			return true, nil
		}
		messages, err := e.index.CountMessageFacts(ctx, user.ID, familyID)
		if err != nil {
			return false, err
		}
		return messages > 0, nil
	}

	e.logger.Warn("access check for unknown role",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return false, nil
}

// CanAccessDocument reports whether the user may access the referenced
// document. The family gate is evaluated first and is a hard gate; a
// non-empty allow-list then narrows access further, never widens it.
func (e *Engine) CanAccessDocument(ctx context.Context, user *models.User, ref DocumentRef) (bool, error) {
	ok, err := e.CanAccessFamily(ctx, user, ref.FamilyID)
	if err != nil || !ok {
		return false, err
	}

	if len(ref.AccessPermissions) > 0 {
		for _, id := range ref.AccessPermissions {
			if id == user.ID {
				return true, nil
			}
		}
		return false, nil
	}

	return true, nil
}
