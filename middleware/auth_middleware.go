package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/access"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/tokens"
	"github.com/stonebridge/family-office-portal/utils"
)

// TokenVerifier defines the interface for verifying bearer tokens
type TokenVerifier interface {
	// Verify verifies a token string and returns its claims
	Verify(tokenString string) (*tokens.VerifiedClaims, error)
}

// PrincipalDirectory resolves a verified token subject to a live user record
type PrincipalDirectory interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	verifier TokenVerifier
	users    PrincipalDirectory
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, users PrincipalDirectory, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// RequireAuth is a middleware that requires a valid bearer token resolving to
// an active user. Every failure mode (missing header, bad signature, expired
// or malformed token, unknown subject, deactivated user) is answered with
// the same 401 so callers cannot tell which stage rejected them.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.users.GetByID(ctx, claims.Sub)
		if err != nil {
			m.logger.Warn("token subject not found",
				zap.String("request_id", requestID),
				zap.String("sub", claims.Sub.String()),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		if !user.IsActive {
			m.logger.Warn("deactivated user presented valid token",
				zap.String("request_id", requestID),
				zap.String("user_id", user.ID.String()))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithClaims(ctx, claims)
		ctx = WithUser(ctx, user)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(user.Role)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is a middleware that requires the authenticated user to hold
// one of the allowed roles. It must be mounted after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			user := GetUserFromContext(ctx)
			if user == nil {
				m.logger.Error("user not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if err := access.RequireRole(user, allowed...); err != nil {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role)))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
