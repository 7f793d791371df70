package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/auth"
	"github.com/nholden/beacon/internal/domain"
)

// UserContextKey is the echo context key under which the authenticated user
// is stored for downstream handlers.
const UserContextKey = "user"

// Auth creates a middleware that protects routes requiring authentication.
// It reads the session cookie, validates the token, loads the user, and
// stores it in the request context.
func Auth(tokens *auth.TokenManager, users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized - no token provided"})
			}

			claims, err := tokens.Validate(cookie.Value)
			if err != nil {
				// Clear the invalid cookie so clients stop resending it.
				c.SetCookie(tokens.ClearCookie())
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized - invalid token"})
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized - user not found"})
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// RequireAdmin ensures only administrators reach the wrapped handler. It must
// run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(UserContextKey).(*domain.User)
			if !ok || user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			}
			if !user.IsAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "Admin access required"})
			}
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user from the echo context.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok && user != nil
}
