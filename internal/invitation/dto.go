// AngelaMos | 2026
// dto.go

package invitation

import (
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
)

type InviteRequest struct {
	Email   string   `json:"email"    validate:"required,email,max=255"`
	RoleIDs []string `json:"role_ids" validate:"dive,oneof=admin editor"`
}

type Response struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TeamID    string    `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	Sent      string    `json:"sent"`
}

type ListResponse struct {
	Items []Response `json:"items"`
}

type inviteResponse struct {
	Invitation Response `json:"invitation"`
	Notice     string   `json:"notice"`
}

type acceptResponse struct {
	Membership membership.Response `json:"membership"`
	Notice     string              `json:"notice"`
}
