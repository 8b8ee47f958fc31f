package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/config"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/tokens"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByOfficeID(ctx context.Context, officeID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, officeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOfficeRepository is a mock implementation of repositories.OfficeRepository
type MockOfficeRepository struct {
	mock.Mock
}

func (m *MockOfficeRepository) Create(ctx context.Context, office *models.FamilyOffice) error {
	args := m.Called(ctx, office)
	return args.Error(0)
}

func (m *MockOfficeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FamilyOffice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FamilyOffice), args.Error(1)
}

func (m *MockOfficeRepository) List(ctx context.Context) ([]*models.FamilyOffice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FamilyOffice), args.Error(1)
}

// MockFamilyRepository is a mock implementation of repositories.FamilyRepository
type MockFamilyRepository struct {
	mock.Mock
}

func (m *MockFamilyRepository) Create(ctx context.Context, family *models.Family) error {
	args := m.Called(ctx, family)
	return args.Error(0)
}

func (m *MockFamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) List(ctx context.Context) ([]*models.Family, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) GetByOfficeID(ctx context.Context, officeID uuid.UUID) ([]*models.Family, error) {
	args := m.Called(ctx, officeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Family), args.Error(1)
}

// passthroughTx satisfies repositories.TransactionManager by running the
// function directly, counting invocations so tests can assert the
// transactional path was taken.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) Begin(ctx context.Context) (repositories.Transaction, error) {
	return noopTx{ctx: ctx}, nil
}

func (p *passthroughTx) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	p.calls++
	return fn(ctx, noopTx{ctx: ctx})
}

type noopTx struct {
	ctx context.Context
}

func (t noopTx) Commit() error            { return nil }
func (t noopTx) Rollback() error          { return nil }
func (t noopTx) Context() context.Context { return t.ctx }

func testIssuer() *tokens.Issuer {
	return tokens.NewIssuer(config.AuthConfig{
		JWTSecret: "test-secret",
		Algorithm: "HS256",
		TokenTTL:  time.Hour,
	})
}

func newAuthService(users *MockUserRepository, offices *MockOfficeRepository, families *MockFamilyRepository) *AuthService {
	return NewAuthService(users, offices, families, &passthroughTx{}, testIssuer(), zap.NewNop())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	officeID := uuid.New()
	office := &models.FamilyOffice{ID: officeID, Name: "Stonebridge"}

	t.Run("registers advisor and hashes password", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		offices.On("GetByID", mock.Anything, officeID).Return(office, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		user := models.NewUser("advisor@example.com", "Ada", "Baker",
			models.RoleAdvisor, officeID, nil)

		created, err := svc.Register(ctx, user, "long-enough-password")
		require.NoError(t, err)
		assert.NotEmpty(t, created.PasswordHash)
		assert.NotEqual(t, "long-enough-password", created.PasswordHash)
		assert.True(t, VerifyPassword(created.PasswordHash, "long-enough-password"))
		users.AssertExpectations(t)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		user := models.NewUser("x@example.com", "X", "Y",
			models.UserRole("superuser"), officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.ErrorIs(t, err, ErrInvalidRole)
		users.AssertNotCalled(t, "Create")
	})

	t.Run("family member without family is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		user := models.NewUser("m@example.com", "M", "N",
			models.RoleFamilyMember, officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.ErrorIs(t, err, ErrFamilyIDRequired)
	})

	t.Run("family member in a family of another office is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		familyID := uuid.New()
		offices.On("GetByID", mock.Anything, officeID).Return(office, nil)
		families.On("GetByID", mock.Anything, familyID).Return(
			&models.Family{ID: familyID, FamilyOfficeID: uuid.New()}, nil)

		user := models.NewUser("m@example.com", "M", "N",
			models.RoleFamilyMember, officeID, &familyID)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))
		users.AssertNotCalled(t, "Create")
	})

	t.Run("unknown office is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		offices.On("GetByID", mock.Anything, officeID).Return(nil, ErrOfficeNotFound)

		user := models.NewUser("a@example.com", "A", "B",
			models.RoleAdvisor, officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.ErrorIs(t, err, ErrOfficeNotFound)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		offices.On("GetByID", mock.Anything, officeID).Return(office, nil)

		user := models.NewUser("a@example.com", "A", "B",
			models.RoleAdvisor, officeID, nil)

		_, err := svc.Register(ctx, user, "short")
		assert.True(t, IsValidationError(err))
		users.AssertNotCalled(t, "Create")
	})

	t.Run("existence checks and insert run in one transaction", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		tx := &passthroughTx{}
		svc := NewAuthService(users, offices, families, tx, testIssuer(), zap.NewNop())

		offices.On("GetByID", mock.Anything, officeID).Return(office, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		user := models.NewUser("advisor@example.com", "Ada", "Baker",
			models.RoleAdvisor, officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("validation failures never open a transaction", func(t *testing.T) {
		users := new(MockUserRepository)
		tx := &passthroughTx{}
		svc := NewAuthService(users, new(MockOfficeRepository), new(MockFamilyRepository),
			tx, testIssuer(), zap.NewNop())

		user := models.NewUser("m@example.com", "M", "N",
			models.RoleFamilyMember, officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.ErrorIs(t, err, ErrFamilyIDRequired)
		assert.Equal(t, 0, tx.calls)
	})

	t.Run("duplicate email propagates conflict", func(t *testing.T) {
		users := new(MockUserRepository)
		offices := new(MockOfficeRepository)
		families := new(MockFamilyRepository)
		svc := newAuthService(users, offices, families)

		offices.On("GetByID", mock.Anything, officeID).Return(office, nil)
		users.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateEmail)

		user := models.NewUser("taken@example.com", "A", "B",
			models.RoleAdvisor, officeID, nil)

		_, err := svc.Register(ctx, user, "long-enough-password")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	makeUser := func(password string) *models.User {
		hash, err := HashPassword(password)
		if err != nil {
			panic(err)
		}
		return &models.User{
			ID:           uuid.New(),
			Email:        "user@example.com",
			PasswordHash: hash,
			Role:         models.RoleAdvisor,
			IsActive:     true,
		}
	}

	t.Run("valid credentials yield a verifiable token", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users, new(MockOfficeRepository), new(MockFamilyRepository))

		user := makeUser("correct-password")
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		got, token, err := svc.Authenticate(ctx, user.Email, "correct-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		verifier := tokens.NewVerifier(config.AuthConfig{
			JWTSecret: "test-secret",
			Algorithm: "HS256",
			TokenTTL:  time.Hour,
		})
		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Sub)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users, new(MockOfficeRepository), new(MockFamilyRepository))

		user := makeUser("correct-password")
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		_, _, err := svc.Authenticate(ctx, user.Email, "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same invalid credentials error", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users, new(MockOfficeRepository), new(MockFamilyRepository))

		users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)

		_, _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account yields invalid credentials", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users, new(MockOfficeRepository), new(MockFamilyRepository))

		user := makeUser("correct-password")
		user.IsActive = false
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		_, _, err := svc.Authenticate(ctx, user.Email, "correct-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("hash and verify round trip", func(t *testing.T) {
		hash, err := HashPassword("my-secret-password")
		require.NoError(t, err)
		assert.True(t, VerifyPassword(hash, "my-secret-password"))
		assert.False(t, VerifyPassword(hash, "other-password"))
	})

	t.Run("same password hashes differently each time", func(t *testing.T) {
		h1, err := HashPassword("my-secret-password")
		require.NoError(t, err)
		h2, err := HashPassword("my-secret-password")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("too short password is rejected", func(t *testing.T) {
		_, err := HashPassword("seven77")
		assert.True(t, IsValidationError(err))
	})
}
