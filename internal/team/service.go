// AngelaMos | 2026
// service.go

package team

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

const (
	defaultTeamNameKey = "teams.new.default_team_name"
	slugAttempts       = 20
)

// CacheInvalidator drops a user's persisted ability cache.
type CacheInvalidator interface {
	InvalidateAbilityCache(ctx context.Context, userID string) error
}

// Authorizer answers team-level capability questions for the acting user.
// *role.Ability satisfies it.
type Authorizer interface {
	Can(ctx context.Context, action role.Action, teamID string) (bool, error)
	TeamIDs(ctx context.Context) ([]string, error)
}

type Service struct {
	repo       Repository
	caches     CacheInvalidator
	translator *i18n.Translator
	sanitizer  *bluemonday.Policy
}

func NewService(
	repo Repository,
	caches CacheInvalidator,
	translator *i18n.Translator,
) *Service {
	return &Service{
		repo:       repo,
		caches:     caches,
		translator: translator,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Create makes a team with owner as its first admin.
func (s *Service) Create(
	ctx context.Context,
	owner membership.Member,
	req CreateRequest,
) (*Team, *membership.Membership, error) {
	name := s.cleanName(req.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("create team: name: %w", core.ErrInvalidInput)
	}

	locale, err := i18n.Canonicalize(req.Locale)
	if err != nil {
		return nil, nil, fmt.Errorf("create team: locale: %w", core.ErrInvalidInput)
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	team := &Team{
		Name:     name,
		Slug:     slug,
		TimeZone: strings.TrimSpace(req.TimeZone),
		Locale:   locale,
	}

	userID := owner.UserID
	m := &membership.Membership{
		UserID:             &userID,
		AddedByID:          &userID,
		UserFirstName:      owner.FirstName,
		UserLastName:       owner.LastName,
		UserEmail:          owner.Email,
		UserProfilePhotoID: owner.ProfilePhotoID,
		RoleIDs:            role.IDs{role.Admin.Key},
	}

	if err := s.repo.CreateWithMembership(ctx, team, m); err != nil {
		return nil, nil, err
	}

	if err := s.caches.InvalidateAbilityCache(ctx, userID); err != nil {
		return nil, nil, fmt.Errorf("invalidate ability cache: %w", err)
	}

	return team, m, nil
}

// CreateDefault creates the team a new user lands in, named in the user's
// locale.
func (s *Service) CreateDefault(
	ctx context.Context,
	owner membership.Member,
	locale, timeZone string,
) (*Team, error) {
	if locale != "" {
		ctx = i18n.WithLocale(ctx, locale)
	}

	name := s.translator.MustT(ctx, defaultTeamNameKey, i18n.WithDefault("Your Team"))

	team, _, err := s.Create(ctx, owner, CreateRequest{
		Name:     name,
		TimeZone: timeZone,
		Locale:   locale,
	})
	return team, err
}

func (s *Service) Get(ctx context.Context, id string) (*Team, error) {
	team, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.BeingDestroyed {
		return nil, fmt.Errorf("get team: %w", core.ErrNotFound)
	}
	return team, nil
}

// List returns the live teams the ability can read, ordered by name.
func (s *Service) List(ctx context.Context, ability Authorizer) ([]Team, error) {
	ids, err := ability.TeamIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(ids) == 0 {
		return []Team{}, nil
	}
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) Update(
	ctx context.Context,
	ability Authorizer,
	team *Team,
	req UpdateRequest,
) (*Team, error) {
	if err := authorize(ctx, ability, role.ActionManage, team.ID); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}

	updated := *team
	if req.Name != nil {
		name := s.cleanName(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("update team: name: %w", core.ErrInvalidInput)
		}
		updated.Name = name
	}
	if req.TimeZone != nil {
		updated.TimeZone = strings.TrimSpace(*req.TimeZone)
	}
	if req.Locale != nil {
		locale, err := i18n.Canonicalize(*req.Locale)
		if err != nil {
			return nil, fmt.Errorf("update team: locale: %w", core.ErrInvalidInput)
		}
		updated.Locale = locale
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Destroy flags the team; the teardown job removes it later.
func (s *Service) Destroy(ctx context.Context, ability Authorizer, teamID string) error {
	if err := authorize(ctx, ability, role.ActionManage, teamID); err != nil {
		return fmt.Errorf("destroy team: %w", err)
	}
	return s.repo.MarkBeingDestroyed(ctx, teamID)
}

func (s *Service) PendingTeardown(ctx context.Context, limit int) ([]Team, error) {
	return s.repo.ListBeingDestroyed(ctx, limit)
}

// Teardown removes a flagged team and resets the ability cache of every
// user that belonged to it.
func (s *Service) Teardown(ctx context.Context, teamID string) error {
	userIDs, err := s.repo.Teardown(ctx, teamID)
	if err != nil {
		return err
	}

	var errs []error
	for _, userID := range userIDs {
		if err := s.caches.InvalidateAbilityCache(ctx, userID); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

func authorize(ctx context.Context, ability Authorizer, action role.Action, teamID string) error {
	if ability == nil {
		return core.ErrForbidden
	}
	ok, err := ability.Can(ctx, action, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrForbidden
	}
	return nil
}

func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	candidate := base

	for i := 2; i <= slugAttempts+1; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}

	return base + "-" + uuid.New().String()[:8], nil
}

func (s *Service) cleanName(name string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(name)))
}
