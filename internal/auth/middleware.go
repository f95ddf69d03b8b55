package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/labstack/echo/v4"
)

type sessionKey struct{}

// WithSession stores a session in ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or the guest session.
func SessionFrom(ctx context.Context) models.Session {
	if s, ok := ctx.Value(sessionKey{}).(models.Session); ok {
		return s
	}

	return models.GuestSession()
}

// Middleware resolves the caller once per request. Requests without an Authorization header
// continue as guests; a malformed header or an invalid token is rejected with 401.
func Middleware(resolver *Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			token := ""
			if header != "" {
				scheme, value, ok := strings.Cut(header, " ")
				if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(value) == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
				}
				token = strings.TrimSpace(value)
			}

			ctx := c.Request().Context()
			session, err := resolver.Resolve(ctx, token)
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrNoSecret) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(WithSession(ctx, session)))

			return next(c)
		}
	}
}

// RequireRole rejects callers below minimum: guests get 401, signed-in callers 403.
func RequireRole(minimum models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c.Request().Context())
			if session.Role >= minimum {
				return next(c)
			}
			if session.Role == models.RoleGuest {
				return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
			}

			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
