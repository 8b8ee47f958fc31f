package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/tokens"
)

// AuthService handles registration, credential checks, and token issuance
type AuthService struct {
	users    repositories.UserRepository
	offices  repositories.OfficeRepository
	families repositories.FamilyRepository
	tx       repositories.TransactionManager
	issuer   *tokens.Issuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	offices repositories.OfficeRepository,
	families repositories.FamilyRepository,
	tx repositories.TransactionManager,
	issuer *tokens.Issuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		offices:  offices,
		families: families,
		tx:       tx,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates a new user after validating its role and tenant links.
// A family_member must name a family; other roles must not be tied to one.
// The tenant existence checks and the insert run in one transaction so the
// office or family cannot disappear between check and create.
func (s *AuthService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if !user.Role.IsValid() {
		return nil, NewDomainError(ErrorTypeValidation, "invalid role", nil).
			WithDetail("role", string(user.Role))
	}

	if user.Role == models.RoleFamilyMember && user.FamilyID == nil {
		return nil, ErrFamilyIDRequired
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	err = s.tx.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		if _, err := s.offices.GetByID(ctx, user.FamilyOfficeID); err != nil {
			return err
		}

		if user.FamilyID != nil {
			family, err := s.families.GetByID(ctx, *user.FamilyID)
			if err != nil {
				return err
			}
			if family.FamilyOfficeID != user.FamilyOfficeID {
				return NewDomainError(ErrorTypeValidation,
					"family does not belong to the given family office", nil)
			}
		}

		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return user, nil
}

// Authenticate checks credentials and issues an access token. Unknown email,
// wrong password, and deactivated account all map to the same error so the
// response does not leak which part failed.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.logger.Warn("failed login attempt", zap.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issuer.IssueDefault(user)
	if err != nil {
		return nil, "", WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user authenticated", zap.String("user_id", user.ID.String()))
	return user, token, nil
}
