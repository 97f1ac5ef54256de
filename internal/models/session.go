package models

// MentorSession is the authenticated mentor identity carried through a
// request's lifetime.
type MentorSession struct {
	MentorID  int64  `json:"mentor_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expires_at"`
	IssuedAt  int64  `json:"issued_at"`
}

// RequestLoginPayload is the magic-link login request
type RequestLoginPayload struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyLoginPayload exchanges a login token for a session
type VerifyLoginPayload struct {
	Token string `json:"token" binding:"required"`
}

// VerifyLoginResponse is returned after a successful login verification
type VerifyLoginResponse struct {
	Success bool           `json:"success"`
	Session *MentorSession `json:"session"`
}
