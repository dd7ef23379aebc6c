package models

import "time"

// SessionUser is the identity carried in a signed session.
type SessionUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"image,omitempty"`
}

// Session is returned by the session endpoints.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// GoogleLoginRequest carries the ID token from Google Identity Services.
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}
