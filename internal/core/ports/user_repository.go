package ports

import (
	"context"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// UserRepository is the credential store. Email lookups expect a normalized
// (lowercased) address.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateByID(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

// SecretHasher is a one-way password hash.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}
