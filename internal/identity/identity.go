// Package identity is the sign-in capability the storefront consumes:
// account creation, credential checks, and opaque session tokens.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("no authenticated user")
)

// User is the authenticated identity as the cart sees it.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Name is the buyer-facing display name, falling back to the email.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Provider is the slice of the identity service handlers depend on.
type Provider interface {
	CurrentUser(ctx context.Context, token string) (*User, error)
	SignOut(ctx context.Context, token string) error
}
