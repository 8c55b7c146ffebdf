package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and public messages.
//   - Logs configuration and unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	fail := func(code int, msg string) (int, errorResponse) {
		return code, errorResponse{Message: msg}
	}

	// Known domain errors → deterministic HTTP codes.
	var (
		ve *domain.ValidationError
		fe *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return fail(http.StatusBadRequest, ve.Reason)
	case errors.Is(err, domain.ErrEmailExists):
		return fail(http.StatusBadRequest, "Email already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, domain.ErrQuotaExceeded):
		return fail(http.StatusBadRequest, "This professional reached daily limit. Please choose another.")
	case errors.Is(err, domain.ErrTokenMissing):
		return fail(http.StatusUnauthorized, "Not authorized, no token provided")
	case errors.Is(err, domain.ErrTokenExpired):
		return fail(http.StatusUnauthorized, "Token expired")
	case errors.Is(err, domain.ErrTokenInvalid):
		return fail(http.StatusUnauthorized, "Token is not valid")
	case errors.As(err, &fe):
		return fail(http.StatusForbidden, fe.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(http.StatusForbidden, "Access forbidden")
	case errors.Is(err, domain.ErrProfessionalNotFound):
		return fail(http.StatusNotFound, "Professional not found")
	case errors.Is(err, domain.ErrBookingNotFound):
		return fail(http.StatusNotFound, "Booking not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return fail(http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrSigningKeyMissing):
		log.Error().
			Err(err).
			Str("kind", "config_error").
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("token signing key is not configured")
		return fail(http.StatusInternalServerError, "Server configuration error")
	}

	// Echo's own errors (404 from router, 405, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fail(he.Code, fmt.Sprintf("%v", he.Message))
	}

	// Unexpected error: log the real cause, return a generic message with a
	// diagnostic the caller can quote.
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	log.Error().
		Err(err).
		Str("kind", "internal_error").
		Str("request_id", requestID).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	resp := errorResponse{Message: "Server error", Error: "internal error"}
	if requestID != "" {
		resp.Error = "internal error (request " + requestID + ")"
	}
	return http.StatusInternalServerError, resp
}
