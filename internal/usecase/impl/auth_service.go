// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// dummyPasswordHash is verified against when a login targets an unknown email,
// so the unknown-email and wrong-password paths burn the same hashing cost.
// This is NOT a real credential - the all-zero salt and digest never match any password.
//
//nolint:gosec // G101: intentionally fake hash for enumeration-timing equalization, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register orchestrates the complete user registration process.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.logger.Info("Starting user registration", "email", input.Email)

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.logger.Error("Failed to hash password during registration", "error", err)

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	var registeredUser *entity.User

	// The insert runs inside a single transaction so a conflicting commit
	// rolls back completely. The pre-check is only an optimization; the
	// unique constraint is what actually guarantees one row per email.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("user registration failed")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user by email")
		}

		newUser := &entity.User{
			Email:          input.Email,
			HashedPassword: hashedPassword,
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}
		registeredUser = newUser

		return nil
	})

	if err != nil {
		srv.logger.Warn("Failed to execute user registration transaction", "error", err, "email", input.Email)

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}
	srv.logger.Debug("User registered successfully", "userID", registeredUser.ID)

	return &usecase.RegisterOutput{User: registeredUser.Public()}, nil
}

// Login orchestrates the user login process and issues a token pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.logger.Debug("Starting user login", "email", input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user by email")
		}

		// Unknown email: still verify against the dummy hash so this path
		// takes as long as a real password check.
		srv.hasher.Verify(input.Password, dummyPasswordHash)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if !srv.hasher.Verify(input.Password, user.HashedPassword) {
		srv.logger.Warn("Login failed", "email", input.Email)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	accessToken, refreshToken, err := srv.issueTokenPair(user.ID)
	if err != nil {
		return nil, err
	}
	srv.logger.Debug("User logged in successfully", "userID", user.ID)

	return &usecase.LoginOutput{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ResolveCurrentUser maps a bearer access token to the account it was issued for.
func (srv *authService) ResolveCurrentUser(ctx context.Context, accessToken string) (*entity.PublicUser, error) {
	claims, err := srv.tokenService.Verify(accessToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthenticated.WrapMessage("token verification failed")
	}
	if claims.Kind != entity.TokenKindAccess {
		return nil, domainerrors.ErrUnauthenticated.WrapMessage("token is not an access token")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		// Tokens are not revoked on delete: a token may outlive its account.
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthenticated.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user.Public(), nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	srv.logger.Debug("Attempting to refresh token pair")

	claims, err := srv.tokenService.Verify(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token verification failed")
	}
	if claims.Kind != entity.TokenKindRefresh {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token is not a refresh token")
	}

	// The subject must still exist; a refresh token for a deleted account is dead.
	if _, err := srv.userRepo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	accessToken, refreshToken, err := srv.issueTokenPair(claims.UserID)
	if err != nil {
		return nil, err
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// issueTokenPair mints a matching access and refresh token for the user.
func (srv *authService) issueTokenPair(userID uuid.UUID) (string, string, error) {
	accessToken, err := srv.tokenService.IssueAccess(userID)
	if err != nil {
		srv.logger.Error("Failed to issue access token", "error", err, "userID", userID)

		return "", "", errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefresh(userID)
	if err != nil {
		srv.logger.Error("Failed to issue refresh token", "error", err, "userID", userID)

		return "", "", errors.Wrap(err, "failed to issue refresh token")
	}

	return accessToken, refreshToken, nil
}
