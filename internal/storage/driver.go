package storage

import (
	"context"

	"github.com/skybi/session-broker/internal/user"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. loads the credential list)
	Initialize(ctx context.Context) error

	// Users provides a user repository implementation
	Users() user.Repository

	// Close closes the storage driver and discards its repositories
	Close()
}
