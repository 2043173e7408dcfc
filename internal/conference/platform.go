package conference

import (
	"context"

	"github.com/skybi/session-broker/internal/user"
)

// Platform represents the external real-time communication platform hosting the conference sessions
type Platform interface {
	// CreateSession creates a new remote conference session
	CreateSession(ctx context.Context) (Handle, error)
}

// Handle represents a remote conference session created by a Platform
type Handle interface {
	// ID returns the platform-side identifier of the remote session
	ID() string

	// CreateConnection creates a new connection to the remote session and returns its token
	CreateConnection(ctx context.Context, properties *ConnectionProperties) (*Connection, error)
}

// ConnectionProperties holds the metadata attached to a new connection
type ConnectionProperties struct {
	// Data is an opaque JSON document the platform hands out to every other participant
	Data string
	Role user.Role
}

// Connection represents a connection created on a remote session
type Connection struct {
	ID    string
	Token string
}
