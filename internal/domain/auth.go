package domain

import "time"

// Session is what a successful register or login hands back to the caller.
type Session struct {
	User      PublicUser
	Token     string
	ExpiresAt time.Time
}
