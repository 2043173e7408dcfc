package conference

import "errors"

var (
	// ErrSessionNotFound is returned when no conference session is registered under a name
	ErrSessionNotFound = errors.New("conference session does not exist")

	// ErrTokenNotFound is returned when a token was not issued for a conference session
	ErrTokenNotFound = errors.New("token was not issued for the conference session")

	// ErrUpstream wraps every error raised by the Platform
	ErrUpstream = errors.New("conference platform failure")
)
