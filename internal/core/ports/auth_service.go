package ports

import (
	"context"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// RegisterInput carries the registration form. Role may be empty (client).
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	Location string
	Skills   []string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// TokenService issues and verifies signed identity assertions.
type TokenService interface {
	Issue(userID string, role domain.Role) (string, error)
	Verify(token string) (domain.Identity, error)
}
