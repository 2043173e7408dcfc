package session

import "time"

// Session represents an authenticated login session at the broker API.
// A session is identified by the hash of its token; the raw token is only known to the client.
type Session struct {
	Token    string
	Username string
	Expires  int64
}

// IsExpired returns whether the session lifetime has ended
func (ses *Session) IsExpired() bool {
	return time.Now().Unix() >= ses.Expires
}
