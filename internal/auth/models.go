package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidRole        = errors.New("role cannot be self-assigned")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTypeAccess = "access"

// JWTClaims are the claims of an access token. The auth middleware reads
// user_id, email, role and type from them.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}
