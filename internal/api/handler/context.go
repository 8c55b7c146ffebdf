package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/homeman/marketplace-api/internal/api/middleware"
	"github.com/homeman/marketplace-api/internal/core/domain"
)

// ctxIdentity returns the caller injected by the Auth middleware. Its absence
// means the route was wired without Auth, which is treated as a missing token.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return domain.Identity{}, domain.ErrTokenMissing
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
