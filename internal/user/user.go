package user

import (
	"fmt"
	"strings"
)

// Role represents the role a user takes inside a conference session
type Role string

const (
	RolePublisher  Role = "PUBLISHER"
	RoleSubscriber Role = "SUBSCRIBER"
)

// ParseRole parses a role name case-insensitively
func ParseRole(raw string) (Role, error) {
	switch role := Role(strings.ToUpper(strings.TrimSpace(raw))); role {
	case RolePublisher, RoleSubscriber:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role '%s'", raw)
	}
}

// Grants returns the conference grants a participant with this role receives
func (role Role) Grants() Grants {
	switch role {
	case RolePublisher:
		return EmptyGrants.With(GrantSubscribe, GrantPublish, GrantPublishData)
	case RoleSubscriber:
		return EmptyGrants.With(GrantSubscribe)
	default:
		return EmptyGrants
	}
}

// User represents a user allowed to log in to the service.
// Users are immutable and identified by their username.
type User struct {
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
	Role         Role   `json:"role"`
}
