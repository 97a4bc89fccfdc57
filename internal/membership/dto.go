// AngelaMos | 2026
// dto.go

package membership

import (
	"time"
)

type UpdateRolesRequest struct {
	RoleIDs []string `json:"role_ids" validate:"dive,oneof=admin editor"`
}

type Response struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	UserID    *string   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleIDs   []string  `json:"role_ids"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(m *Membership) Response {
	roles := []string(m.RoleIDs)
	if roles == nil {
		roles = []string{}
	}
	return Response{
		ID:        m.ID,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Name:      m.Name(),
		Email:     m.UserEmail,
		RoleIDs:   roles,
		Pending:   m.Pending(),
		CreatedAt: m.CreatedAt,
	}
}

type ListResponse struct {
	Items []Response `json:"items"`
}
