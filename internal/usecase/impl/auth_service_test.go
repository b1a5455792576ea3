package impl

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"passport/config"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/infra/auth"
	mockRepo "passport/internal/mocks/repository"
	mockSvc "passport/internal/mocks/service"
	"passport/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockFactory := mockRepo.NewMockRepositoryFactory(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()

	mockHasher.EXPECT().
		Hash("password123").
		Return("$argon2id$v=19$m=19456,t=2,p=1$salt$digest", nil)

	mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
	passthroughTransaction(mockTx, mockFactory)

	mockUserRepo.EXPECT().
		FindByEmail(ctx, "alice@example.com").
		Return(nil, repository.ErrUserNotFound)

	mockUserRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		RunAndReturn(func(_ context.Context, user *entity.User) error {
			// The store assigns ID and creation time on insert.
			user.ID = userID
			user.CreatedAt = time.Now()

			return nil
		})

	output, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "alice@example.com", output.User.Email)
}

func TestAuthService_Register_DoesNotExposePasswordHash(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockFactory := mockRepo.NewMockRepositoryFactory(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()

	mockHasher.EXPECT().Hash("password123").Return("hashed-secret", nil)
	mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
	passthroughTransaction(mockTx, mockFactory)
	mockUserRepo.EXPECT().
		FindByEmail(ctx, "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	mockUserRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(user *entity.User) bool {
			return user.HashedPassword == "hashed-secret"
		})).
		Return(nil)

	output, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// The public projection must never carry the hash.
	serialized, err := json.Marshal(output.User)
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "hashed-secret")
}

func TestAuthService_Register_EmailAlreadyRegistered(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockFactory := mockRepo.NewMockRepositoryFactory(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	existing := &entity.User{
		ID:    uuid.New(),
		Email: "taken@example.com",
	}

	mockHasher.EXPECT().Hash("password123").Return("hashed", nil)
	mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
	passthroughTransaction(mockTx, mockFactory)
	mockUserRepo.EXPECT().
		FindByEmail(ctx, "taken@example.com").
		Return(existing, nil)

	output, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
}

func TestAuthService_Register_ConflictOnInsert(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockFactory := mockRepo.NewMockRepositoryFactory(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()

	mockHasher.EXPECT().Hash("password123").Return("hashed", nil)
	mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
	passthroughTransaction(mockTx, mockFactory)

	// A concurrent registration wins between the pre-check and the insert;
	// the unique constraint still surfaces the typed conflict.
	mockUserRepo.EXPECT().
		FindByEmail(ctx, "raced@example.com").
		Return(nil, repository.ErrUserNotFound)
	mockUserRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists"))

	output, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "raced@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	mockHasher.EXPECT().Hash("password123").Return("", errors.New("entropy source failed"))

	output, err := svc.Register(context.Background(), &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, output)
}

func TestAuthService_Login_Success(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID:             userID,
		Email:          "alice@example.com",
		HashedPassword: "stored-hash",
	}

	mockUserRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
	mockHasher.EXPECT().Verify("password123", "stored-hash").Return(true)
	mockTokens.EXPECT().IssueAccess(userID).Return("access-token", nil)
	mockTokens.EXPECT().IssueRefresh(userID).Return("refresh-token", nil)

	output, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "access-token", output.AccessToken)
	assert.Equal(t, "refresh-token", output.RefreshToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	user := &entity.User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		HashedPassword: "stored-hash",
	}

	mockUserRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
	mockHasher.EXPECT().Verify("wrong-password", "stored-hash").Return(false)

	output, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailBurnsHashingCost(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()

	mockUserRepo.EXPECT().
		FindByEmail(ctx, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound)

	// The dummy verification keeps the unknown-email path as slow as a real
	// password check, so response timing cannot enumerate accounts.
	mockHasher.EXPECT().Verify("password123", dummyPasswordHash).Return(false)

	output, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, output)

	// Unknown email and wrong password yield the identical error.
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()

	mockUserRepo.EXPECT().
		FindByEmail(ctx, "alice@example.com").
		Return(nil, errors.New("connection refused"))

	output, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_ResolveCurrentUser_Success(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com"}

	mockTokens.EXPECT().Verify("valid-access-token").Return(&service.Claims{
		UserID: userID,
		Kind:   entity.TokenKindAccess,
	}, nil)
	mockUserRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	resolved, err := svc.ResolveCurrentUser(ctx, "valid-access-token")
	require.NoError(t, err)
	assert.Equal(t, userID, resolved.ID)
	assert.Equal(t, "alice@example.com", resolved.Email)
}

func TestAuthService_ResolveCurrentUser_InvalidToken(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	mockTokens.EXPECT().Verify("garbage").Return(nil, service.ErrInvalidToken)

	resolved, err := svc.ResolveCurrentUser(context.Background(), "garbage")
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestAuthService_ResolveCurrentUser_RefreshTokenRejected(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	// A refresh token must not double as an access token.
	mockTokens.EXPECT().Verify("refresh-token").Return(&service.Claims{
		UserID: uuid.New(),
		Kind:   entity.TokenKindRefresh,
	}, nil)

	resolved, err := svc.ResolveCurrentUser(context.Background(), "refresh-token")
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestAuthService_ResolveCurrentUser_DeletedUser(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()

	mockTokens.EXPECT().Verify("orphaned-token").Return(&service.Claims{
		UserID: userID,
		Kind:   entity.TokenKindAccess,
	}, nil)
	mockUserRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

	resolved, err := svc.ResolveCurrentUser(ctx, "orphaned-token")
	require.Error(t, err)
	assert.Nil(t, resolved)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com"}

	mockTokens.EXPECT().Verify("valid-refresh-token").Return(&service.Claims{
		UserID: userID,
		Kind:   entity.TokenKindRefresh,
	}, nil)
	mockUserRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	mockTokens.EXPECT().IssueAccess(userID).Return("new-access", nil)
	mockTokens.EXPECT().IssueRefresh(userID).Return("new-refresh", nil)

	output, err := svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "valid-refresh-token"})
	require.NoError(t, err)
	assert.Equal(t, "new-access", output.AccessToken)
	assert.Equal(t, "new-refresh", output.RefreshToken)
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	// Renewal requires a refresh token; an access token must not be accepted.
	mockTokens.EXPECT().Verify("access-token").Return(&service.Claims{
		UserID: uuid.New(),
		Kind:   entity.TokenKindAccess,
	}, nil)

	output, err := svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "access-token"})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	mockTokens.EXPECT().Verify("expired").Return(nil, service.ErrInvalidToken)

	output, err := svc.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "expired"})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

// TestAuthService_RegisterLoginResolve_EndToEnd runs the full pipeline with the
// real hasher and token service; only the store is mocked, backed by a map.
func TestAuthService_RegisterLoginResolve_EndToEnd(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		Secret:              "end-to-end-secret",
		AccessTokenMinutes:  20,
		RefreshTokenMinutes: 1440,
	}
	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	hasher := auth.NewArgon2idHasher()

	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockFactory := mockRepo.NewMockRepositoryFactory(t)
	svc := NewAuthService(mockTx, mockUserRepo, hasher, tokenService, newDiscardLogger())

	ctx := context.Background()

	usersByEmail := make(map[string]*entity.User)
	usersByID := make(map[uuid.UUID]*entity.User)

	mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
	passthroughTransaction(mockTx, mockFactory)

	mockUserRepo.EXPECT().
		FindByEmail(mock.Anything, mock.AnythingOfType("string")).
		RunAndReturn(func(_ context.Context, email string) (*entity.User, error) {
			if user, ok := usersByEmail[email]; ok {
				return user, nil
			}

			return nil, repository.ErrUserNotFound
		})
	mockUserRepo.EXPECT().
		Create(mock.Anything, mock.AnythingOfType("*entity.User")).
		RunAndReturn(func(_ context.Context, user *entity.User) error {
			user.ID = uuid.New()
			user.CreatedAt = time.Now()
			usersByEmail[user.Email] = user
			usersByID[user.ID] = user

			return nil
		})
	mockUserRepo.EXPECT().
		FindByID(mock.Anything, mock.AnythingOfType("uuid.UUID")).
		RunAndReturn(func(_ context.Context, id uuid.UUID) (*entity.User, error) {
			if user, ok := usersByID[id]; ok {
				return user, nil
			}

			return nil, repository.ErrUserNotFound
		})

	registered, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	loggedIn, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	resolved, err := svc.ResolveCurrentUser(ctx, loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resolved.ID)

	// The refresh token must not pass as an access token.
	_, err = svc.ResolveCurrentUser(ctx, loggedIn.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	refreshed, err := svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: loggedIn.RefreshToken})
	require.NoError(t, err)

	resolvedAgain, err := svc.ResolveCurrentUser(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resolvedAgain.ID)

	// Wrong password after registration still fails closed.
	_, err = svc.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "incorrect horse",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Refresh_DeletedUser(t *testing.T) {
	mockTx := mockRepo.NewMockTransactionManager(t)
	mockUserRepo := mockRepo.NewMockUserRepository(t)
	mockHasher := mockSvc.NewMockPasswordHasher(t)
	mockTokens := mockSvc.NewMockTokenService(t)
	svc := NewAuthService(mockTx, mockUserRepo, mockHasher, mockTokens, newDiscardLogger())

	ctx := context.Background()
	userID := uuid.New()

	mockTokens.EXPECT().Verify("orphaned-refresh").Return(&service.Claims{
		UserID: userID,
		Kind:   entity.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
		},
	}, nil)
	mockUserRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

	output, err := svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "orphaned-refresh"})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}
