package identity

import (
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
)

// User is the identity attached to every authenticated request.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Metadata mirrors the name/role pair under user_metadata, the shape the web
// client reads after sign-in.
type Metadata struct {
	Name string     `json:"name"`
	Role enums.Role `json:"role"`
}

// UserDTO is the public representation returned by the auth endpoints.
type UserDTO struct {
	User
	UserMetadata Metadata `json:"user_metadata"`
}

func (u User) DTO() *UserDTO {
	return &UserDTO{User: u, UserMetadata: Metadata{Name: u.Name, Role: u.Role}}
}

// record is the persisted form; the hash never leaves this package.
type record struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// SignupRequest is the public signup payload.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the only self-service mutation: the display name.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// Session is the token pair returned by login and refresh.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         *UserDTO `json:"user"`
}
