package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is enforced at registration time
const minPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", NewDomainError(ErrorTypeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", WrapInternal("failed to hash password", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
