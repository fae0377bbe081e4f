/*
Package auth provides session tokens, password hashing, and the demo
step-up authentication gate.

PURPOSE:
  The engine treats authentication as a collaborator: login yields a
  signed session token, and sensitive advances are gated behind a step-up
  factor whose sensor implementation lives outside the core. This package
  supplies both sides of that contract.

TOKENS:
  HS256 JWTs carrying the user id and role. Short-lived by default;
  verification rejects expired or tampered tokens.

PASSWORDS:
  bcrypt with the default cost. Hashes are stored by the backend; plain
  passwords never are.

SEE ALSO:
  - advance/workflow.go: Consumes the step-up Authenticator contract
  - backend/fixture.go: Uses Signer to mint demo session tokens
*/
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/payquick/wage-engine/engine"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// =============================================================================
// SIGNER - Mints and verifies session tokens
// =============================================================================

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

const defaultSessionTTL = 12 * time.Hour

type Claims struct {
	UserID engine.UserID
	Role   Role
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(secret []byte, issuer string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Signer{secret: secret, issuer: issuer, ttl: ttl}
}

// Mint creates a signed session token for a user.
func (s *Signer) Mint(userID engine.UserID, role Role) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID: engine.UserID(claims.Subject),
		Role:   Role(claims.Role),
	}, nil
}
