package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/apperror"
)

// Context keys for storing session data in the Echo context. Other packages
// use these keys (via the exported getter functions below) to access the
// authenticated user's identity.
const (
	contextKeyClaims = "auth_claims"
	contextKeyUserID = "auth_user_id"
)

// RequireAuth returns middleware that validates the session token and
// injects its claims into the request context. Authentication state is
// re-derived from the incoming cookie or bearer header on every request —
// nothing is remembered between requests.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			claims, err := service.VerifyToken(token)
			if err != nil {
				return err
			}

			c.Set(contextKeyClaims, claims)
			c.Set(contextKeyUserID, claims.UserID)

			return next(c)
		}
	}
}

// tokenFromRequest extracts the session token from the cookie, falling back
// to an Authorization bearer header for non-browser clients.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// --- Exported getters for other packages ---

// GetClaims retrieves the authenticated session claims from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetClaims(c echo.Context) *Claims {
	claims, ok := c.Get(contextKeyClaims).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns zero if the request is not authenticated.
func GetUserID(c echo.Context) int64 {
	id, ok := c.Get(contextKeyUserID).(int64)
	if !ok {
		return 0
	}
	return id
}
