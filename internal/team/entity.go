// AngelaMos | 2026
// entity.go

package team

import (
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
)

type Team struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Slug           string    `db:"slug"`
	BeingDestroyed bool      `db:"being_destroyed"`
	TimeZone       string    `db:"time_zone"`
	Locale         string    `db:"locale"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (t *Team) ModelName() i18n.ModelName {
	return i18n.ModelName{Element: "team", Collection: "teams"}
}

func (t *Team) LabelString() string {
	return t.Name
}

func (t *Team) PreferredLocale() string {
	if t == nil {
		return ""
	}
	return t.Locale
}
