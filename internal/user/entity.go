// AngelaMos | 2026
// entity.go

package user

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/abilitycache"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
)

// oauthPlaceholder matches the address assigned to accounts created through
// an OAuth provider that did not share an email.
var oauthPlaceholder = regexp.MustCompile(`^noreply@[0-9a-fA-F]{32}\.example\.com$`)

type User struct {
	ID                string           `db:"id"`
	Email             string           `db:"email"`
	PasswordHash      string           `db:"password_hash"`
	FirstName         string           `db:"first_name"`
	LastName          string           `db:"last_name"`
	TimeZone          string           `db:"time_zone"`
	Locale            string           `db:"locale"`
	ProfilePhotoID    *string          `db:"profile_photo_id"`
	CurrentTeamID     *string          `db:"current_team_id"`
	PlatformAgentOfID *string          `db:"platform_agent_of_id"`
	AbilityCache      abilitycache.Map `db:"ability_cache"`
	TokenVersion      int              `db:"token_version"`
	LastSeenAt        *time.Time       `db:"last_seen_at"`
	CreatedAt         time.Time        `db:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at"`
	DeletedAt         *time.Time       `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Name is the full name, or the email when no name has been set.
func (u *User) Name() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Email
}

// FormattedEmailAddress renders `"Jo Smith" <jo@example.com>`, or the bare
// address when the user has no name.
func (u *User) FormattedEmailAddress() string {
	name := u.FullName()
	if name == "" {
		return u.Email
	}
	return (&mail.Address{Name: name, Address: u.Email}).String()
}

func (u *User) EmailIsOAuthPlaceholder() bool {
	return oauthPlaceholder.MatchString(u.Email)
}

// IsDeveloper reports whether the user's email is in the configured list.
func (u *User) IsDeveloper(emails []string) bool {
	if u == nil || u.Email == "" {
		return false
	}
	return slices.ContainsFunc(emails, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), u.Email)
	})
}

func (u *User) IsPlatformAgent() bool {
	return u.PlatformAgentOfID != nil
}

func (u *User) ModelName() i18n.ModelName {
	return i18n.ModelName{Element: "user", Collection: "users"}
}

func (u *User) LabelString() string {
	return u.Name()
}

func (u *User) PreferredLocale() string {
	if u == nil {
		return ""
	}
	return u.Locale
}

func (u *User) String() string {
	return fmt.Sprintf("User(%s)", u.ID)
}
