// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name,omitempty"       validate:"omitempty,max=100"`
	LastName       *string `json:"last_name,omitempty"        validate:"omitempty,max=100"`
	Email          *string `json:"email,omitempty"            validate:"omitempty,email,max=255"`
	TimeZone       *string `json:"time_zone,omitempty"        validate:"omitempty,timezone"`
	Locale         *string `json:"locale,omitempty"           validate:"omitempty,bcp47_language_tag"`
	ProfilePhotoID *string `json:"profile_photo_id,omitempty" validate:"omitempty,max=255"`
}

type SetCurrentTeamRequest struct {
	TeamID string `json:"team_id" validate:"required,uuid"`
}

type UserResponse struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Name                  string     `json:"name"`
	FormattedEmailAddress string     `json:"formatted_email_address"`
	TimeZone              string     `json:"time_zone"`
	Locale                string     `json:"locale"`
	CurrentTeamID         *string    `json:"current_team_id"`
	ProfilePhotoID        *string    `json:"profile_photo_id,omitempty"`
	OAuthPlaceholderEmail bool       `json:"oauth_placeholder_email"`
	LastSeenAt            *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		Name:                  u.Name(),
		FormattedEmailAddress: u.FormattedEmailAddress(),
		TimeZone:              u.TimeZone,
		Locale:                u.Locale,
		CurrentTeamID:         u.CurrentTeamID,
		ProfilePhotoID:        u.ProfilePhotoID,
		OAuthPlaceholderEmail: u.EmailIsOAuthPlaceholder(),
		LastSeenAt:            u.LastSeenAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}
