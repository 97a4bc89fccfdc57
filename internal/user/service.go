// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/microcosm-cc/bluemonday"

	"github.com/carterperez-dev/templates/teams-backend/internal/abilitycache"
	"github.com/carterperez-dev/templates/teams-backend/internal/auth"
	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

// MembershipDirectory is the membership side of a user's profile: the
// denormalized copies of the user's fields and the team-membership check.
type MembershipDirectory interface {
	SyncUserFields(ctx context.Context, userID, firstName, lastName, email string, profilePhotoID *string) error
	ExistsForUserAndTeam(ctx context.Context, userID, teamID string) (bool, error)
}

// TeamZones lets a user's time zone flow to teams they alone belong to.
type TeamZones interface {
	AdoptTimeZoneForSoleMember(ctx context.Context, userID, timeZone string) (int64, error)
}

// ProfileStores are the stores a profile update writes to.
type ProfileStores struct {
	Users       Repository
	Memberships MembershipDirectory
	Teams       TeamZones
}

// ProfileTx runs fn against stores that share one transaction.
type ProfileTx func(ctx context.Context, fn func(ProfileStores) error) error

// NewProfileTx binds the stores to a fresh transaction on db per call.
func NewProfileTx(
	db *sqlx.DB,
	memberships func(core.DBTX) MembershipDirectory,
	teams func(core.DBTX) TeamZones,
) ProfileTx {
	return func(ctx context.Context, fn func(ProfileStores) error) error {
		return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
			return fn(ProfileStores{
				Users:       NewRepository(tx),
				Memberships: memberships(tx),
				Teams:       teams(tx),
			})
		})
	}
}

type Service struct {
	repo        Repository
	memberships MembershipDirectory
	profileTx   ProfileTx
	caches      *abilitycache.Factory
	sanitizer   *bluemonday.Policy
}

func NewService(
	repo Repository,
	memberships MembershipDirectory,
	profileTx ProfileTx,
	caches *abilitycache.Factory,
) *Service {
	return &Service{
		repo:        repo,
		memberships: memberships,
		profileTx:   profileTx,
		caches:      caches,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	req auth.NewUser,
) (*auth.UserInfo, error) {
	locale, err := i18n.Canonicalize(req.Locale)
	if err != nil {
		return nil, fmt.Errorf("create user: locale: %w", core.ErrInvalidInput)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: req.PasswordHash,
		FirstName:    s.cleanName(req.FirstName),
		LastName:     s.cleanName(req.LastName),
		TimeZone:     req.TimeZone,
		Locale:       locale,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial profile change. Membership copies of the
// user's fields are re-synced when any of them changed, and a new time zone
// is offered to teams where the user is the only member. All three writes
// commit together or not at all.
func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := *user

	if req.FirstName != nil {
		user.FirstName = s.cleanName(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = s.cleanName(*req.LastName)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.TimeZone != nil {
		user.TimeZone = strings.TrimSpace(*req.TimeZone)
	}
	if req.Locale != nil {
		locale, err := i18n.Canonicalize(*req.Locale)
		if err != nil {
			return nil, fmt.Errorf("update profile: locale: %w", core.ErrInvalidInput)
		}
		user.Locale = locale
	}
	if req.ProfilePhotoID != nil {
		photo := strings.TrimSpace(*req.ProfilePhotoID)
		if photo == "" {
			user.ProfilePhotoID = nil
		} else {
			user.ProfilePhotoID = &photo
		}
	}

	err = s.profileTx(ctx, func(st ProfileStores) error {
		if err := st.Users.UpdateProfile(ctx, user); err != nil {
			return err
		}

		if membershipFieldsChanged(&before, user) {
			if err := st.Memberships.SyncUserFields(
				ctx,
				user.ID,
				user.FirstName,
				user.LastName,
				user.Email,
				user.ProfilePhotoID,
			); err != nil {
				return fmt.Errorf("sync memberships: %w", err)
			}
		}

		if user.TimeZone != "" && user.TimeZone != before.TimeZone {
			if _, err := st.Teams.AdoptTimeZoneForSoleMember(ctx, user.ID, user.TimeZone); err != nil {
				return fmt.Errorf("sync team time zones: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SetCurrentTeam points the user at one of their teams. A nil teamID
// clears it.
func (s *Service) SetCurrentTeam(
	ctx context.Context,
	userID string,
	teamID *string,
) error {
	if teamID != nil {
		member, err := s.memberships.ExistsForUserAndTeam(ctx, userID, *teamID)
		if err != nil {
			return fmt.Errorf("set current team: %w", err)
		}
		if !member {
			return fmt.Errorf("set current team: not a member: %w", core.ErrInvalidInput)
		}
	}

	return s.repo.SetCurrentTeam(ctx, userID, teamID)
}

// InvalidateAbilityCache drops every cached capability for the user.
func (s *Service) InvalidateAbilityCache(ctx context.Context, userID string) error {
	return s.caches.For(userID, nil).Invalidate(ctx)
}

func (s *Service) Ability(u *User) *role.Ability {
	if u == nil {
		return nil
	}
	return role.NewAbility(u.ID, s.caches.For(u.ID, u.AbilityCache))
}

// MultipleTeams reports whether the user belongs to more than one team.
func (s *Service) MultipleTeams(ctx context.Context, u *User) (bool, error) {
	ids, err := s.Ability(u).TeamIDs(ctx)
	if err != nil {
		return false, err
	}
	return len(ids) > 1, nil
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

// cleanName strips markup. The policy escapes what it keeps, so the result
// is unescaped back to plain text.
func (s *Service) cleanName(name string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(name)))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func membershipFieldsChanged(before, after *User) bool {
	return before.FirstName != after.FirstName ||
		before.LastName != after.LastName ||
		before.Email != after.Email ||
		!equalPtr(before.ProfilePhotoID, after.ProfilePhotoID)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Locale:       u.Locale,
		TimeZone:     u.TimeZone,
		PasswordHash: u.PasswordHash,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
