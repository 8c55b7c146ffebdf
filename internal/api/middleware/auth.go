package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

const bearerPrefix = "Bearer "

// Auth verifies the bearer token and injects the caller identity into context.
// Failures are returned as domain errors for the central error handler.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return domain.ErrTokenMissing
			}

			raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if raw == "" {
				return domain.ErrTokenMissing
			}

			identity, err := tokens.Verify(raw)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
