package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := IdentityFrom(c)
			if _, ok := allowed[identity.Role]; !ok {
				return &domain.ForbiddenError{
					Role:     string(identity.Role),
					Resource: c.Request().Method + " " + c.Request().URL.Path,
				}
			}
			return next(c)
		}
	}
}
