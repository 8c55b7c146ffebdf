package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of actor kinds known to the marketplace.
type Role string

const (
	RoleClient Role = "client"
	RolePro    Role = "pro"
	RoleAdmin  Role = "admin"
)

// DefaultLocation is stored when a user registers without a location.
const DefaultLocation = "not specified"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ParseRole converts a raw string into a Role. The empty string is rejected;
// callers that want the "client" default apply it before parsing.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClient, RolePro, RoleAdmin:
		return r, nil
	default:
		return "", NewValidationError("role must be one of: client, pro, admin")
	}
}

func (r Role) String() string { return string(r) }

// User models an account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	Skills       []string  `json:"skills"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch is a partial update applied by UserRepository.UpdateByID.
// Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Phone       *string
	Location    *string
	Rating      *float64
	ReviewCount *int
}

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID string
	Role   Role
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLocation lowercases and trims a location, falling back to DefaultLocation.
func NormalizeLocation(location string) string {
	l := strings.ToLower(strings.TrimSpace(location))
	if l == "" {
		return DefaultLocation
	}
	return l
}

// NormalizeSkills trims, drops empties and removes duplicates, keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
