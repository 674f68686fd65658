package dto

import "time"

// LoginRequest carries credentials submitted from the login form or an API client.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
	Next     string `json:"next" form:"next" validate:"omitempty,max=512"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
}

// LoginPageResponse describes the login page for clients that render it themselves.
type LoginPageResponse struct {
	University string `json:"university"`
	Next       string `json:"next,omitempty"`
	Flash      string `json:"flash,omitempty"`
}
