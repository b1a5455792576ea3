package service

import (
	"errors"

	"passport/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single failure surfaced by Verify. Structural,
// signature and expiry failures all collapse into it so callers cannot be
// used as an oracle for why a token was rejected.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the custom claims carried by issued tokens.
type Claims struct {
	UserID uuid.UUID        `json:"-"`
	Kind   entity.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueAccess creates a short-lived access token for the given user.
	IssueAccess(userID uuid.UUID) (string, error)

	// IssueRefresh creates a long-lived refresh token for the given user.
	IssueRefresh(userID uuid.UUID) (string, error)

	// Verify checks signature and expiry and parses the subject.
	// Any failure returns ErrInvalidToken.
	Verify(tokenString string) (*Claims, error)
}
