package auth

import "seatline/internal/users"

// represents the authentication response
type AuthResponse struct {
	User        *users.User `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
}
