package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kallydish/kallydish/pkg/tokens"
)

// TokenAuth gates routes on the signed tokens. Access tokens authorize
// ordinary requests; refresh tokens are accepted only by the refresh and
// logout routes, which re-check revocation in the service layer.
type TokenAuth struct {
	JWTSecret     []byte
	RefreshSecret []byte
}

func NewTokenAuth(jwtSecret, refreshSecret []byte) *TokenAuth {
	return &TokenAuth{JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func (m *TokenAuth) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("user_id", uint(userID))
		return next(c)
	}
}

func (m *TokenAuth) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
		}

		claims, err := tokens.RefreshClaimsFromToken(raw, m.RefreshSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("refresh_token", raw)
		return next(c)
	}
}

// UserID reads the authenticated caller's id stashed by RequireAccess.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// RefreshToken reads the raw refresh token stashed by RequireRefresh.
func RefreshToken(c echo.Context) (string, bool) {
	raw, ok := c.Get("refresh_token").(string)
	return raw, ok
}
