package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	// JTI doubles as the refresh session key; a fresh one is generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients. Roles are not
// embedded: authorization always reads the stored user record.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}
