// AngelaMos | 2026
// service.go

package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

var ErrLastAdmin = errors.New("team must keep at least one admin")

// CacheInvalidator drops a user's persisted ability cache after their
// roles or memberships change.
type CacheInvalidator interface {
	InvalidateAbilityCache(ctx context.Context, userID string) error
}

type Service struct {
	repo   Repository
	caches CacheInvalidator
}

func NewService(repo Repository, caches CacheInvalidator) *Service {
	return &Service{repo: repo, caches: caches}
}

// Find never creates: a missing membership is (nil, nil).
func (s *Service) Find(ctx context.Context, userID, teamID string) (*Membership, error) {
	m, err := s.repo.FindByUserAndTeam(ctx, userID, teamID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) SyncUserFields(
	ctx context.Context,
	userID, firstName, lastName, email string,
	profilePhotoID *string,
) error {
	return s.repo.SyncUserFields(ctx, userID, firstName, lastName, email, profilePhotoID)
}

func (s *Service) ExistsForUserAndTeam(ctx context.Context, userID, teamID string) (bool, error) {
	return s.repo.ExistsForUserAndTeam(ctx, userID, teamID)
}

func (s *Service) ListForTeam(ctx context.Context, teamID string) ([]Membership, error) {
	return s.repo.ListByTeam(ctx, teamID)
}

// Get loads a membership and checks it belongs to teamID.
func (s *Service) Get(ctx context.Context, teamID, membershipID string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.TeamID != teamID {
		return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
	}
	return m, nil
}

// UpdateRoles replaces the roles on a membership. Only team admins may do
// it, and the last admin cannot demote themselves.
func (s *Service) UpdateRoles(
	ctx context.Context,
	actor *Membership,
	teamID, membershipID string,
	keys []string,
) (*Membership, error) {
	if !actor.IsAdmin() || actor.TeamID != teamID {
		return nil, fmt.Errorf("update roles: %w", core.ErrForbidden)
	}

	roleIDs, err := role.IDs(keys).Normalize()
	if err != nil {
		return nil, fmt.Errorf("update roles: %w: %w", core.ErrInvalidInput, err)
	}

	target, err := s.Get(ctx, teamID, membershipID)
	if err != nil {
		return nil, err
	}

	if target.UserID != nil && target.IsAdmin() && !roleIDs.Has(role.Admin) {
		if err := s.ensureAnotherAdmin(ctx, teamID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateRoles(ctx, target.ID, roleIDs); err != nil {
		return nil, err
	}
	target.RoleIDs = roleIDs

	if err := s.invalidate(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Remove deletes a membership. Admins may remove anyone; members may
// remove themselves.
func (s *Service) Remove(
	ctx context.Context,
	actor *Membership,
	teamID, membershipID string,
) error {
	target, err := s.Get(ctx, teamID, membershipID)
	if err != nil {
		return err
	}

	if actor == nil || actor.TeamID != teamID || (!actor.IsAdmin() && actor.ID != target.ID) {
		return fmt.Errorf("remove membership: %w", core.ErrForbidden)
	}

	if target.UserID != nil && target.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, teamID); err != nil {
			return err
		}
	}

	// invitations sent from target, and their pending memberships, cascade
	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return err
	}

	if target.UserID != nil {
		if err := s.repo.ClearCurrentTeam(ctx, *target.UserID, teamID); err != nil {
			return err
		}
	}

	return s.invalidate(ctx, target)
}

// ensureAnotherAdmin counts claimed admins only; a pending admin invite
// never keeps a team administered.
func (s *Service) ensureAnotherAdmin(ctx context.Context, teamID string) error {
	admins, err := s.repo.CountAdmins(ctx, teamID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return fmt.Errorf("%w: %w", core.ErrConflict, ErrLastAdmin)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, m *Membership) error {
	if m.UserID == nil {
		return nil
	}
	if err := s.caches.InvalidateAbilityCache(ctx, *m.UserID); err != nil {
		return fmt.Errorf("invalidate ability cache: %w", err)
	}
	return nil
}
