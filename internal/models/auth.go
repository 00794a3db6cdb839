package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims of a session token. Email identifies the
// directory record the session was opened for.
type TokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}
