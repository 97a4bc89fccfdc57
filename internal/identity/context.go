// AngelaMos | 2026
// context.go

// Package identity holds who is acting, for which team, for one unit of
// work: an HTTP request or a background job run.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/teams-backend/internal/dates"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
	"github.com/carterperez-dev/templates/teams-backend/internal/user"
)

// Abilities derives the capability object for a user.
type Abilities interface {
	Ability(u *user.User) *role.Ability
}

// MembershipFinder looks up, and never creates, the membership joining a
// user to a team. A missing membership is (nil, nil).
type MembershipFinder interface {
	Find(ctx context.Context, userID, teamID string) (*membership.Membership, error)
}

// Context is not safe for concurrent use. Each unit of work owns one.
type Context struct {
	abilities   Abilities
	memberships MembershipFinder

	user       *user.User
	team       *team.Team
	membership *membership.Membership
	ability    *role.Ability
	timeZone   string
}

func New(abilities Abilities, memberships MembershipFinder) *Context {
	return &Context{abilities: abilities, memberships: memberships}
}

// SetUser replaces the acting user, moving the ambient time zone and the
// ability with it, then recomputes the membership.
func (c *Context) SetUser(ctx context.Context, u *user.User) error {
	c.user = u
	if u == nil {
		c.timeZone = ""
		c.ability = nil
	} else {
		c.timeZone = u.TimeZone
		c.ability = c.abilities.Ability(u)
	}
	return c.refreshMembership(ctx)
}

func (c *Context) SetTeam(ctx context.Context, t *team.Team) error {
	c.team = t
	return c.refreshMembership(ctx)
}

func (c *Context) refreshMembership(ctx context.Context) error {
	c.membership = nil
	if c.user == nil || c.team == nil {
		return nil
	}

	m, err := c.memberships.Find(ctx, c.user.ID, c.team.ID)
	if err != nil {
		return fmt.Errorf("identity membership: %w", err)
	}
	c.membership = m
	return nil
}

// Reset clears every field, including the ambient time zone.
func (c *Context) Reset() {
	if c == nil {
		return
	}
	c.user = nil
	c.team = nil
	c.membership = nil
	c.ability = nil
	c.timeZone = ""
}

func (c *Context) User() *user.User {
	if c == nil {
		return nil
	}
	return c.user
}

func (c *Context) Team() *team.Team {
	if c == nil {
		return nil
	}
	return c.team
}

func (c *Context) Membership() *membership.Membership {
	if c == nil {
		return nil
	}
	return c.membership
}

func (c *Context) Ability() *role.Ability {
	if c == nil {
		return nil
	}
	return c.ability
}

func (c *Context) TimeZone() string {
	if c == nil {
		return ""
	}
	return c.timeZone
}

// Location is the ambient zone; UTC when unset or unloadable.
func (c *Context) Location() *time.Location {
	return dates.LocationOrUTC(c.TimeZone())
}

func (c *Context) Formatter() dates.Formatter {
	return dates.New(c.Location())
}

// Member returns the acting user's fields as copied onto memberships.
func (c *Context) Member() (membership.Member, bool) {
	u := c.User()
	if u == nil {
		return membership.Member{}, false
	}
	return membership.Member{
		UserID:         u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		ProfilePhotoID: u.ProfilePhotoID,
	}, true
}

type contextKey struct{}

func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns nil when no identity was attached. Every accessor on
// a nil *Context is safe.
func FromContext(ctx context.Context) *Context {
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}
