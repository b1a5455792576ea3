// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"passport/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
// Password/confirmation matching is the delivery layer's input validation;
// by the time this DTO reaches the usecase the password is final.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput defines the data required to renew a token pair.
type RefreshInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's public information.
type RegisterOutput struct {
	User *entity.PublicUser
}

// LoginOutput returns the user and the generated tokens after a successful login.
type LoginOutput struct {
	User         *entity.PublicUser
	AccessToken  string
	RefreshToken string
}

// TokenPairOutput returns a freshly issued token pair.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Register creates a new account. A duplicate email surfaces as
	// domainerrors.ErrEmailAlreadyRegistered.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and issues a token pair. Unknown email and
	// wrong password are indistinguishable to the caller.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// ResolveCurrentUser maps a bearer access token to the user it was
	// issued for, or domainerrors.ErrUnauthenticated.
	ResolveCurrentUser(ctx context.Context, accessToken string) (*entity.PublicUser, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, input *RefreshInput) (*TokenPairOutput, error)
}
