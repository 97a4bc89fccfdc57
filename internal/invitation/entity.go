// AngelaMos | 2026
// entity.go

package invitation

import (
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
)

type Invitation struct {
	ID               string    `db:"id"`
	Email            string    `db:"email"`
	UUID             string    `db:"uuid"`
	FromMembershipID string    `db:"from_membership_id"`
	TeamID           string    `db:"team_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (i *Invitation) ModelName() i18n.ModelName {
	return i18n.ModelName{Element: "invitation", Collection: "invitations"}
}

func (i *Invitation) LabelString() string {
	return i.Email
}
