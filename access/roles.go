package access

import (
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/services"
)

// RequireRole checks that the user's role is one of the allowed roles for a
// role-scoped operation. It must run before any mutation: a failed check
// means the operation never starts. The returned error classifies as
// forbidden, never as an authentication failure.
func RequireRole(user *models.User, allowed ...models.UserRole) error {
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return services.NewDomainError(services.ErrorTypeForbidden, "insufficient permissions", nil).
		WithDetail("role", string(user.Role))
}
