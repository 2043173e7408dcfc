package user

import "context"

// Repository defines the credential lookup API
type Repository interface {
	// GetByUsername retrieves a user by their username.
	// It returns nil if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Authenticate retrieves the user matching both the given username and password.
	// It returns nil if no user matches.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
