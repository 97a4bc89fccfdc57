// AngelaMos | 2026
// ability.go

package role

import (
	"context"
	"fmt"
	"slices"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionManage Action = "manage"
)

// ParentIDResolver answers "which <target> ids does the user hold <role> for
// via <relation>". The ability cache implements it.
type ParentIDResolver interface {
	Resolve(ctx context.Context, r Role, relation, target string) ([]string, error)
}

// Ability is the capability object for one user. Team-level checks go
// through the resolver so repeated checks hit the persisted cache.
type Ability struct {
	userID   string
	resolver ParentIDResolver
}

func NewAbility(userID string, resolver ParentIDResolver) *Ability {
	return &Ability{userID: userID, resolver: resolver}
}

func (a *Ability) UserID() string {
	if a == nil {
		return ""
	}
	return a.userID
}

func (a *Ability) TeamIDs(ctx context.Context) ([]string, error) {
	if a == nil || a.resolver == nil {
		return nil, nil
	}
	return a.resolver.Resolve(ctx, DefaultRole, "memberships", "team")
}

func (a *Ability) AdministratingTeamIDs(ctx context.Context) ([]string, error) {
	if a == nil || a.resolver == nil {
		return nil, nil
	}
	return a.resolver.Resolve(ctx, Admin, "memberships", "team")
}

func (a *Ability) Can(ctx context.Context, action Action, teamID string) (bool, error) {
	if a == nil || a.resolver == nil {
		return false, nil
	}

	var (
		ids []string
		err error
	)
	switch action {
	case ActionRead:
		ids, err = a.TeamIDs(ctx)
	case ActionManage:
		ids, err = a.AdministratingTeamIDs(ctx)
	default:
		return false, fmt.Errorf("ability: unknown action %q", action)
	}
	if err != nil {
		return false, fmt.Errorf("ability %s: %w", action, err)
	}

	return slices.Contains(ids, teamID), nil
}
