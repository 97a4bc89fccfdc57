// AngelaMos | 2026
// service.go

package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/teams-backend/internal/auth"
	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
)

var ErrAlreadyMember = errors.New("already a member of this team")

type Memberships interface {
	ExistsForUserAndTeam(ctx context.Context, userID, teamID string) (bool, error)
}

// Users is the user side of onboarding.
type Users interface {
	SetCurrentTeam(ctx context.Context, userID string, teamID *string) error
	InvalidateAbilityCache(ctx context.Context, userID string) error
}

type DefaultTeams interface {
	CreateDefault(ctx context.Context, owner membership.Member, locale, timeZone string) (*team.Team, error)
}

type Service struct {
	repo        Repository
	memberships Memberships
	users       Users
	teams       DefaultTeams
	logger      *slog.Logger
}

func NewService(
	repo Repository,
	memberships Memberships,
	users Users,
	teams DefaultTeams,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		memberships: memberships,
		users:       users,
		teams:       teams,
		logger:      logger,
	}
}

// Invite creates an invitation plus a pending membership holding the
// requested roles. Only team admins may invite.
func (s *Service) Invite(
	ctx context.Context,
	actor *membership.Membership,
	teamID string,
	req InviteRequest,
) (*Invitation, error) {
	if !actor.IsAdmin() || actor.TeamID != teamID {
		return nil, fmt.Errorf("invite: %w", core.ErrForbidden)
	}

	roleIDs, err := role.IDs(req.RoleIDs).Normalize()
	if err != nil {
		return nil, fmt.Errorf("invite: %w: %w", core.ErrInvalidInput, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	inv := &Invitation{
		Email:            email,
		FromMembershipID: actor.ID,
		TeamID:           teamID,
	}
	pending := &membership.Membership{
		UserEmail: email,
		AddedByID: actor.UserID,
		RoleIDs:   roleIDs,
	}

	if err := s.repo.CreateWithMembership(ctx, inv, pending); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invitation created",
		"team_id", teamID,
		"invitation_id", inv.ID,
	)
	return inv, nil
}

func (s *Service) List(ctx context.Context, teamID string) ([]Invitation, error) {
	return s.repo.ListByTeam(ctx, teamID)
}

func (s *Service) Get(ctx context.Context, token string) (*Invitation, error) {
	return s.repo.GetByUUID(ctx, token)
}

// Accept joins member to the inviting team and makes it their current team.
func (s *Service) Accept(
	ctx context.Context,
	token string,
	member membership.Member,
) (*membership.Membership, error) {
	inv, err := s.repo.GetByUUID(ctx, token)
	if err != nil {
		return nil, err
	}

	exists, err := s.memberships.ExistsForUserAndTeam(ctx, member.UserID, inv.TeamID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("accept invitation: %w: %w", core.ErrConflict, ErrAlreadyMember)
	}

	m, err := s.repo.Accept(ctx, inv, member)
	if err != nil {
		return nil, err
	}

	if err := s.users.InvalidateAbilityCache(ctx, member.UserID); err != nil {
		return nil, fmt.Errorf("invalidate ability cache: %w", err)
	}

	if err := s.users.SetCurrentTeam(ctx, member.UserID, &m.TeamID); err != nil {
		return nil, fmt.Errorf("set current team: %w", err)
	}

	return m, nil
}

// Onboard gives a new user a team: the one behind invitationUUID when
// given, otherwise a fresh default team.
func (s *Service) Onboard(ctx context.Context, u *auth.UserInfo, invitationUUID string) error {
	member := membership.Member{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}

	if invitationUUID != "" {
		_, err := s.Accept(ctx, invitationUUID, member)
		return err
	}

	t, err := s.teams.CreateDefault(ctx, member, u.Locale, u.TimeZone)
	if err != nil {
		return fmt.Errorf("create default team: %w", err)
	}

	return s.users.SetCurrentTeam(ctx, u.ID, &t.ID)
}

var _ auth.Onboarder = (*Service)(nil)
