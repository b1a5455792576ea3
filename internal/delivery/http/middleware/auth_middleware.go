package middleware

import (
	"net/http"
	"strings"

	"passport/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ContextKeyUser is the echo context key the authenticated user is stored under.
const ContextKeyUser = "currentUser"

// AuthMiddleware provides middleware for bearer token authentication.
type AuthMiddleware struct {
	uc usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(uc usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{uc: uc}
}

// Authenticate validates the bearer access token and resolves the user it was
// issued for. Missing header, malformed token, wrong token kind and vanished
// user all produce the same 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format, must be Bearer token"})
		}

		user, err := m.uc.ResolveCurrentUser(c.Request().Context(), tokenString)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		c.Set(ContextKeyUser, user)

		return next(c)
	}
}
