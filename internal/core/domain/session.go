package domain

import "time"

// Session is the authenticated context of a single request. It is built by the
// auth middleware from a verified token and never outlives that request.
type Session struct {
	User      *User
	ExpiresAt time.Time
}

// Role is a shortcut for the session owner's role.
func (s *Session) Role() Role {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role
}
