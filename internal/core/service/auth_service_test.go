package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

func newAuthSvc(repo *stubUserRepo, secret string) (*AuthService, *TokenService) {
	tokens := NewTokenService(secret, time.Hour)
	return NewAuthService(repo, prefixHasher{}, tokens, zerolog.Nop()), tokens
}

func TestAuthService_Register_Defaults(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "  Amina  ",
		Email:    " Amina@Example.COM ",
		Password: "pass123",
		Skills:   []string{"plumbing"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Amina", user.Name)
	require.Equal(t, "amina@example.com", user.Email)
	require.Equal(t, domain.RoleClient, user.Role)
	require.Equal(t, domain.DefaultLocation, user.Location)
	require.Empty(t, user.Skills, "skills are only stored for pros")
	require.NotEqual(t, "pass123", user.PasswordHash)
	require.Zero(t, user.Rating)
	require.Zero(t, user.ReviewCount)
}

func TestAuthService_Register_Pro(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Omar",
		Email:    "omar@example.com",
		Password: "pass123",
		Role:     "pro",
		Location: " Hargeisa ",
		Skills:   []string{"plumbing", " wiring ", "plumbing", ""},
	})
	require.NoError(t, err)
	require.Equal(t, domain.RolePro, user.Role)
	require.Equal(t, "hargeisa", user.Location)
	require.Equal(t, []string{"plumbing", "wiring"}, user.Skills)
}

func TestAuthService_Register_DuplicateEmailIgnoresCase(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "dup@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), ports.RegisterInput{Name: "B", Email: "DUP@example.com", Password: "y"})
	require.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	cases := map[string]ports.RegisterInput{
		"missing name":     {Email: "a@example.com", Password: "x"},
		"missing email":    {Name: "A", Password: "x"},
		"missing password": {Name: "A", Email: "a@example.com"},
		"unknown role":     {Name: "A", Email: "a@example.com", Password: "x", Role: "guest"},
		"admin role":       {Name: "A", Email: "a@example.com", Password: "x", Role: "admin"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	require.Empty(t, repo.users)
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	user, err := svc.RegisterAdmin(context.Background(), ports.RegisterInput{Name: "Super Admin", Email: "admin@homeman.com", Password: "x"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, user.Role)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errStore
	svc, _ := newAuthSvc(repo, "secret")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@example.com", Password: "x"})
	require.ErrorIs(t, err, errStore)
}

func TestAuthService_Login_TokenCarriesIdentity(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newAuthSvc(repo, "secret")

	registered, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Omar", Email: "omar@example.com", Password: "s3cret", Role: "pro", Skills: []string{"painting"},
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "OMAR@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, registered.ID, res.User.ID)

	id, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, id.UserID)
	require.Equal(t, domain.RolePro, id.Role)
}

func TestAuthService_Login_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "secret")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "D", Email: "dave@example.com", Password: "goodpass"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	require.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_Login_MissingSigningKey(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo, "")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "E", Email: "e@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "e@example.com", "pw")
	require.ErrorIs(t, err, domain.ErrSigningKeyMissing)
}
