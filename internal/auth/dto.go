// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterRequest struct {
	Email          string `json:"email"                     validate:"required,email,max=255"`
	Password       string `json:"password"                  validate:"required,min=8,max=128"`
	FirstName      string `json:"first_name"                validate:"max=100"`
	LastName       string `json:"last_name"                 validate:"max=100"`
	TimeZone       string `json:"time_zone,omitempty"       validate:"omitempty,timezone"`
	Locale         string `json:"locale,omitempty"          validate:"omitempty,bcp47_language_tag"`
	InvitationUUID string `json:"invitation_uuid,omitempty" validate:"omitempty,uuid"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Locale string `json:"locale,omitempty"`
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}
