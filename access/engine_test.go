package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
)

// MockRelationshipIndex is a mock implementation of RelationshipIndex
type MockRelationshipIndex struct {
	mock.Mock
}

func (m *MockRelationshipIndex) CountMeetingFacts(ctx context.Context, advisorID, familyID uuid.UUID) (int, error) {
	args := m.Called(ctx, advisorID, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockRelationshipIndex) CountMessageFacts(ctx context.Context, principalID, familyID uuid.UUID) (int, error) {
	args := m.Called(ctx, principalID, familyID)
	return args.Int(0), args.Error(1)
}

func newTestUser(role models.UserRole) *models.User {
	return &models.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		Role:           role,
		FamilyOfficeID: uuid.New(),
		IsActive:       true,
	}
}

func TestCanAccessFamily(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("admin can access any family", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdmin)
		allowed, err := engine.CanAccessFamily(ctx, user, uuid.New())

		assert.NoError(t, err)
		assert.True(t, allowed)
		index.AssertNotCalled(t, "CountMeetingFacts")
	})

	t.Run("office admin can access a family in another office", func(t *testing.T) {
		// Documents current behavior: the family gate does not check the
		// family's owning office for family_office_admin, so an office admin
		// passes even for families outside their office.
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleFamilyOfficeAdmin)
		foreignFamily := uuid.New()

		allowed, err := engine.CanAccessFamily(ctx, user, foreignFamily)

		assert.NoError(t, err)
		assert.True(t, allowed)
		index.AssertNotCalled(t, "CountMeetingFacts")
		index.AssertNotCalled(t, "CountMessageFacts")
	})

	t.Run("family member can access own family only", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		familyID := uuid.New()
		user := newTestUser(models.RoleFamilyMember)
		user.FamilyID = &familyID

		allowed, err := engine.CanAccessFamily(ctx, user, familyID)
		assert.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = engine.CanAccessFamily(ctx, user, uuid.New())
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("family member without family is denied", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleFamilyMember)

		allowed, err := engine.CanAccessFamily(ctx, user, uuid.New())
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("advisor with no relations is denied", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdvisor)
		familyID := uuid.New()

		index.On("CountMeetingFacts", mock.Anything, user.ID, familyID).Return(0, nil)
		index.On("CountMessageFacts", mock.Anything, user.ID, familyID).Return(0, nil)

		allowed, err := engine.CanAccessFamily(ctx, user, familyID)
		assert.NoError(t, err)
		assert.False(t, allowed)
		index.AssertExpectations(t)
	})

	t.Run("a single meeting grants advisor access", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdvisor)
		familyID := uuid.New()

		index.On("CountMeetingFacts", mock.Anything, user.ID, familyID).Return(1, nil)

		allowed, err := engine.CanAccessFamily(ctx, user, familyID)
		assert.NoError(t, err)
		assert.True(t, allowed)
		// The messages relation is never consulted when a meeting exists
		index.AssertNotCalled(t, "CountMessageFacts")
	})

	t.Run("a single message grants advisor access", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdvisor)
		familyID := uuid.New()

		index.On("CountMeetingFacts", mock.Anything, user.ID, familyID).Return(0, nil)
		index.On("CountMessageFacts", mock.Anything, user.ID, familyID).Return(1, nil)

		allowed, err := engine.CanAccessFamily(ctx, user, familyID)
		assert.NoError(t, err)
		assert.True(t, allowed)
		index.AssertExpectations(t)
	})

	t.Run("index failure surfaces as error with deny", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdvisor)
		familyID := uuid.New()
		indexErr := errors.New("connection refused")

		index.On("CountMeetingFacts", mock.Anything, user.ID, familyID).Return(0, indexErr)

		allowed, err := engine.CanAccessFamily(ctx, user, familyID)
		assert.ErrorIs(t, err, indexErr)
		assert.False(t, allowed)
	})

	t.Run("unknown role is denied without error", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.UserRole("intern"))

		allowed, err := engine.CanAccessFamily(ctx, user, uuid.New())
		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestCanAccessDocument(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("empty allow-list falls through to family access", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		familyID := uuid.New()
		user := newTestUser(models.RoleFamilyMember)
		user.FamilyID = &familyID

		ref := DocumentRef{FamilyID: familyID}

		allowed, err := engine.CanAccessDocument(ctx, user, ref)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("allow-list narrows family-level access", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		familyID := uuid.New()
		user := newTestUser(models.RoleFamilyMember)
		user.FamilyID = &familyID

		// The caller holds family access but is not on the allow-list
		ref := DocumentRef{
			FamilyID:          familyID,
			AccessPermissions: []uuid.UUID{uuid.New(), uuid.New()},
		}

		allowed, err := engine.CanAccessDocument(ctx, user, ref)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("allow-list membership grants access", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		familyID := uuid.New()
		user := newTestUser(models.RoleFamilyMember)
		user.FamilyID = &familyID

		ref := DocumentRef{
			FamilyID:          familyID,
			AccessPermissions: []uuid.UUID{uuid.New(), user.ID},
		}

		allowed, err := engine.CanAccessDocument(ctx, user, ref)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("allow-list never widens access beyond the family gate", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		// The caller is on the allow-list but lacks family access
		otherFamily := uuid.New()
		user := newTestUser(models.RoleFamilyMember)
		familyID := uuid.New()
		user.FamilyID = &familyID

		ref := DocumentRef{
			FamilyID:          otherFamily,
			AccessPermissions: []uuid.UUID{user.ID},
		}

		allowed, err := engine.CanAccessDocument(ctx, user, ref)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("admin on empty allow-list document passes", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdmin)
		ref := DocumentRef{FamilyID: uuid.New()}

		allowed, err := engine.CanAccessDocument(ctx, user, ref)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("family gate failure propagates", func(t *testing.T) {
		index := new(MockRelationshipIndex)
		engine := NewEngine(index, logger)

		user := newTestUser(models.RoleAdvisor)
		familyID := uuid.New()
		indexErr := errors.New("timeout")

		index.On("CountMeetingFacts", mock.Anything, user.ID, familyID).Return(0, indexErr)

		allowed, err := engine.CanAccessDocument(ctx, user, DocumentRef{FamilyID: familyID})
		assert.ErrorIs(t, err, indexErr)
		assert.False(t, allowed)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("matching role passes", func(t *testing.T) {
		user := newTestUser(models.RoleAdvisor)
		err := RequireRole(user, models.RoleAdmin, models.RoleAdvisor)
		assert.NoError(t, err)
	})

	t.Run("non-matching role is forbidden", func(t *testing.T) {
		user := newTestUser(models.RoleFamilyMember)
		err := RequireRole(user, models.RoleAdmin, models.RoleFamilyOfficeAdmin)
		assert.Error(t, err)
	})

	t.Run("empty allowed set denies everyone", func(t *testing.T) {
		user := newTestUser(models.RoleAdmin)
		err := RequireRole(user)
		assert.Error(t, err)
	})
}
