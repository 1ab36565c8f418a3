package models

import "time"

// Rider is the signed-in identity derived from the auth provider's ID token.
type Rider struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session holds the auth tokens for one signed-in rider.
type Session struct {
	Rider        Rider
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the ID token needs a refresh at time now. A small skew is
// subtracted so a token is refreshed before the server starts rejecting it.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt.Add(-30 * time.Second))
}
