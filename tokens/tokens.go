// Package tokens issues and verifies the signed bearer credentials that
// identify portal users. Verification is pure computation against the
// configured trust root; resolving the subject to a user record is the
// auth middleware's job.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stonebridge/family-office-portal/config"
	"github.com/stonebridge/family-office-portal/models"
)

var (
	// ErrInvalidToken is returned when the token signature or structure is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMalformedToken is returned when a verified token is missing required claims
	ErrMalformedToken = errors.New("malformed token: missing required claims")
)

// Claims represents the claims embedded in a portal access token
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// VerifiedClaims is the identity claim a valid token resolves to. It is not a
// full user record; callers look the subject up against the user store.
type VerifiedClaims struct {
	Sub       uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs access tokens with the trust root's secret
type Issuer struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates a token issuer from auth configuration
func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secret:     []byte(cfg.JWTSecret),
		method:     jwt.SigningMethodHS256,
		defaultTTL: cfg.TokenTTL,
		now:        time.Now,
	}
}

// Issue creates a signed token for the user with the given ttl. The ttl is
// taken literally; a zero ttl yields a token that is already expired.
func (i *Issuer) Issue(user *models.User, ttl time.Duration) (string, error) {
	return i.IssueWithExpiry(user, i.now().Add(ttl))
}

// IssueDefault creates a signed token with the configured default ttl
func (i *Issuer) IssueDefault(user *models.User) (string, error) {
	return i.Issue(user, i.defaultTTL)
}

// DefaultTTL returns the configured default token lifetime
func (i *Issuer) DefaultTTL() time.Duration {
	return i.defaultTTL
}

// IssueWithExpiry creates a signed token for the user with an explicit expiry
func (i *Issuer) IssueWithExpiry(user *models.User, expiresAt time.Time) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(i.method, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verifier validates access tokens against the trust root
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a token verifier from auth configuration
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
	}
}

// Verify validates a token's signature and expiry and returns the identity
// claims it carries. The signing algorithm is pinned to HS256; tokens signed
// with any other method are rejected.
func (v *Verifier) Verify(tokenString string) (*VerifiedClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrMalformedToken
	}

	sub, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrMalformedToken)
	}

	verified := &VerifiedClaims{
		Sub:   sub,
		Email: claims.Email,
	}
	if claims.IssuedAt != nil {
		verified.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}

	return verified, nil
}
