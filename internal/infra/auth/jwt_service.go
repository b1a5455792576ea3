// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"passport/config"
	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Tokens are signed with HMAC-SHA256 and a single shared secret loaded once at startup.
type jwtService struct {
	secret     []byte        // Shared signing secret for both token kinds.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret:     []byte(cfg.JWT.Secret),
		accessTTL:  time.Duration(cfg.JWT.AccessTokenMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.JWT.RefreshTokenMinutes) * time.Minute,
	}, nil
}

// IssueAccess creates a short-lived access token for the given user.
func (s *jwtService) IssueAccess(userID uuid.UUID) (string, error) {
	return s.issue(userID, entity.TokenKindAccess, s.accessTTL)
}

// IssueRefresh creates a long-lived refresh token for the given user.
func (s *jwtService) IssueRefresh(userID uuid.UUID) (string, error) {
	return s.issue(userID, entity.TokenKindRefresh, s.refreshTTL)
}

// Verify checks the token's signature and expiry and parses the subject.
// All failure modes collapse into service.ErrInvalidToken: the caller never
// learns whether the token was malformed, forged, or merely expired.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, service.ErrInvalidToken
	}

	// An unexpired token without an exp claim must not pass as valid forever.
	if claims.ExpiresAt == nil || !claims.Kind.IsValid() {
		return nil, service.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, service.ErrInvalidToken
	}
	claims.UserID = userID

	return claims, nil
}

// issue builds and signs a token with the subject, kind and expiry claims.
func (s *jwtService) issue(userID uuid.UUID, kind entity.TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s token", kind)
	}

	return signed, nil
}
