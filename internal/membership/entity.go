// AngelaMos | 2026
// entity.go

package membership

import (
	"errors"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

var ErrInvalidMembershipState = errors.New(
	"membership must reference exactly one of user or platform agent",
)

// Membership joins a user (or a platform agent) to a team. A membership
// created by an invitation has neither until the invitation is accepted.
// The user_* columns are denormalized copies kept in sync by the user
// service.
type Membership struct {
	ID                 string    `db:"id"`
	TeamID             string    `db:"team_id"`
	UserID             *string   `db:"user_id"`
	PlatformAgentOfID  *string   `db:"platform_agent_of_id"`
	InvitationID       *string   `db:"invitation_id"`
	AddedByID          *string   `db:"added_by_id"`
	UserFirstName      string    `db:"user_first_name"`
	UserLastName       string    `db:"user_last_name"`
	UserEmail          string    `db:"user_email"`
	UserProfilePhotoID *string   `db:"user_profile_photo_id"`
	RoleIDs            role.IDs  `db:"role_ids"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// Pending reports whether the membership still waits on its invitation.
func (m *Membership) Pending() bool {
	return m.InvitationID != nil && m.UserID == nil && m.PlatformAgentOfID == nil
}

func (m *Membership) Validate() error {
	if m.UserID != nil && m.PlatformAgentOfID != nil {
		return ErrInvalidMembershipState
	}
	if m.UserID == nil && m.PlatformAgentOfID == nil && m.InvitationID == nil {
		return ErrInvalidMembershipState
	}
	return nil
}

func (m *Membership) HasRole(r role.Role) bool {
	if m == nil {
		return false
	}
	return m.RoleIDs.Has(r)
}

func (m *Membership) IsAdmin() bool {
	return m.HasRole(role.Admin)
}

func (m *Membership) BelongsTo(userID string) bool {
	return m != nil && m.UserID != nil && *m.UserID == userID
}

func (m *Membership) FullName() string {
	return strings.TrimSpace(m.UserFirstName + " " + m.UserLastName)
}

func (m *Membership) Name() string {
	if n := m.FullName(); n != "" {
		return n
	}
	return m.UserEmail
}

func (m *Membership) ModelName() i18n.ModelName {
	return i18n.ModelName{Element: "membership", Collection: "memberships"}
}

func (m *Membership) LabelString() string {
	return m.Name()
}

// Member is the user-side data copied onto a membership.
type Member struct {
	UserID         string
	FirstName      string
	LastName       string
	Email          string
	ProfilePhotoID *string
}
