package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"client": RoleClient, " Pro ": RolePro, "ADMIN": RoleAdmin} {
		got, err := ParseRole(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseRole("")
	require.ErrorIs(t, err, ErrValidation)
	_, err = ParseRole("guest")
	require.ErrorIs(t, err, ErrValidation)
}

func TestNormalizers(t *testing.T) {
	require.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com "))
	require.Equal(t, "nairobi", NormalizeLocation(" Nairobi"))
	require.Equal(t, DefaultLocation, NormalizeLocation("   "))
	require.Equal(t, []string{"plumbing", "wiring"}, NormalizeSkills([]string{" plumbing", "", "wiring", "plumbing"}))
	require.Empty(t, NormalizeSkills(nil))
}

func TestForbiddenError(t *testing.T) {
	err := error(&ForbiddenError{Role: "client", Resource: "PUT /api/bookings/status"})
	require.True(t, errors.Is(err, ErrForbidden))
	require.Equal(t, "Role 'client' is not authorized to access this resource (PUT /api/bookings/status)", err.Error())

	require.Contains(t, (&ForbiddenError{}).Error(), "Role 'unknown'")
}
