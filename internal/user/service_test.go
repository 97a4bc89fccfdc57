// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/teams-backend/internal/abilitycache"
	"github.com/carterperez-dev/templates/teams-backend/internal/auth"
	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

type fakeRepo struct {
	users       map[string]*User
	savedCaches map[string]abilitycache.Map
	currentTeam map[string]*string
}

func newFakeRepo(users ...*User) *fakeRepo {
	r := &fakeRepo{
		users:       map[string]*User{},
		savedCaches: map[string]abilitycache.Map{},
		currentTeam: map[string]*string{},
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (r *fakeRepo) IncrementTokenVersion(context.Context, string) error { return nil }

func (r *fakeRepo) SetCurrentTeam(_ context.Context, id string, teamID *string) error {
	r.currentTeam[id] = teamID
	return nil
}

func (r *fakeRepo) SaveAbilityCache(_ context.Context, id string, m abilitycache.Map) error {
	r.savedCaches[id] = m
	return nil
}

func (r *fakeRepo) SoftDelete(context.Context, string) error { return nil }

func (r *fakeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(context.Background(), email)
	return err == nil, nil
}

type fakeMemberships struct {
	synced  []string
	members map[string]bool
	syncErr error
}

func (m *fakeMemberships) SyncUserFields(_ context.Context, userID, first, last, email string, _ *string) error {
	if m.syncErr != nil {
		return m.syncErr
	}
	m.synced = append(m.synced, userID+":"+first+" "+last+" "+email)
	return nil
}

func (m *fakeMemberships) ExistsForUserAndTeam(_ context.Context, userID, teamID string) (bool, error) {
	return m.members[userID+"/"+teamID], nil
}

type fakeTeamZones struct {
	adopted []string
}

func (z *fakeTeamZones) AdoptTimeZoneForSoleMember(_ context.Context, userID, tz string) (int64, error) {
	z.adopted = append(z.adopted, userID+":"+tz)
	return 1, nil
}

// stagedTx hands fn copies of the fakes and writes them back only when fn
// succeeds.
type stagedTx struct {
	repo        *fakeRepo
	memberships *fakeMemberships
	zones       *fakeTeamZones
	rollbacks   int
}

func (s *stagedTx) run(_ context.Context, fn func(ProfileStores) error) error {
	users := make(map[string]*User, len(s.repo.users))
	for id, u := range s.repo.users {
		users[id] = u
	}
	repo := *s.repo
	repo.users = users

	memberships := *s.memberships
	memberships.synced = slices.Clone(s.memberships.synced)

	zones := &fakeTeamZones{adopted: slices.Clone(s.zones.adopted)}

	if err := fn(ProfileStores{Users: &repo, Memberships: &memberships, Teams: zones}); err != nil {
		s.rollbacks++
		return err
	}

	s.repo.users = repo.users
	s.memberships.synced = memberships.synced
	s.zones.adopted = zones.adopted
	return nil
}

type staticRelation struct{ ids []string }

func (s staticRelation) TargetIDs(context.Context, string, string, *role.Role) ([]string, error) {
	return s.ids, nil
}

type fixture struct {
	svc         *Service
	repo        *fakeRepo
	memberships *fakeMemberships
	zones       *fakeTeamZones
	tx          *stagedTx
}

func newFixture(teamIDs []string, users ...*User) fixture {
	repo := newFakeRepo(users...)
	memberships := &fakeMemberships{members: map[string]bool{}}
	zones := &fakeTeamZones{}
	tx := &stagedTx{repo: repo, memberships: memberships, zones: zones}
	caches := abilitycache.NewFactory(repo, map[string]abilitycache.Relation{
		"memberships": staticRelation{ids: teamIDs},
	})
	return fixture{
		svc:         NewService(repo, memberships, tx.run, caches),
		repo:        repo,
		memberships: memberships,
		zones:       zones,
		tx:          tx,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizes(t *testing.T) {
	f := newFixture(nil)

	info, err := f.svc.Create(context.Background(), auth.NewUser{
		Email:        "  Jo@Example.COM ",
		PasswordHash: "hash",
		FirstName:    "<b>Jo</b>",
		LastName:     "O'Brien",
		Locale:       "pt_br",
	})
	require.NoError(t, err)

	assert.Equal(t, "jo@example.com", info.Email)
	assert.Equal(t, "Jo O'Brien", info.Name)
	assert.Equal(t, "pt-BR", info.Locale)
}

func TestCreateRejectsBadLocale(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Create(context.Background(), auth.NewUser{
		Email:  "jo@example.com",
		Locale: "!!",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateProfileSyncsMemberships(t *testing.T) {
	f := newFixture(nil, &User{ID: "u1", Email: "jo@example.com", FirstName: "Jo"})

	u, err := f.svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		LastName: strPtr("Smith"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Jo Smith", u.Name())
	assert.Equal(t, []string{"u1:Jo Smith jo@example.com"}, f.memberships.synced)
	assert.Empty(t, f.zones.adopted)
}

func TestUpdateProfileLocaleOnlySkipsSync(t *testing.T) {
	f := newFixture(nil, &User{ID: "u1", Email: "jo@example.com"})

	u, err := f.svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		Locale: strPtr("de"),
	})
	require.NoError(t, err)

	assert.Equal(t, "de", u.Locale)
	assert.Empty(t, f.memberships.synced)
}

func TestUpdateProfileTimeZoneFlowsToTeams(t *testing.T) {
	f := newFixture(nil, &User{ID: "u1", Email: "jo@example.com", TimeZone: "UTC"})

	_, err := f.svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		TimeZone: strPtr("Europe/Berlin"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1:Europe/Berlin"}, f.zones.adopted)

	_, err = f.svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		TimeZone: strPtr("Europe/Berlin"),
	})
	require.NoError(t, err)
	assert.Len(t, f.zones.adopted, 1)
}

func TestUpdateProfileRollsBackWhenSyncFails(t *testing.T) {
	f := newFixture(nil, &User{ID: "u1", Email: "jo@example.com", FirstName: "Jo", TimeZone: "UTC"})
	f.memberships.syncErr = errors.New("deadlock detected")

	_, err := f.svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		LastName: strPtr("Smith"),
		TimeZone: strPtr("Europe/Berlin"),
	})
	require.ErrorIs(t, err, f.memberships.syncErr)
	assert.Equal(t, 1, f.tx.rollbacks)

	stored, err := f.repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.LastName)
	assert.Equal(t, "UTC", stored.TimeZone)
	assert.Empty(t, f.memberships.synced)
	assert.Empty(t, f.zones.adopted)
}

func TestUpdateProfileRequiresUser(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.UpdateProfile(context.Background(), "", UpdateProfileRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestSetCurrentTeamRequiresMembership(t *testing.T) {
	f := newFixture(nil, &User{ID: "u1"})
	f.memberships.members["u1/t1"] = true
	ctx := context.Background()

	require.NoError(t, f.svc.SetCurrentTeam(ctx, "u1", strPtr("t1")))
	assert.Equal(t, "t1", *f.repo.currentTeam["u1"])

	err := f.svc.SetCurrentTeam(ctx, "u1", strPtr("t2"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	require.NoError(t, f.svc.SetCurrentTeam(ctx, "u1", nil))
	assert.Nil(t, f.repo.currentTeam["u1"])
}

func TestMultipleTeamsAndInvalidate(t *testing.T) {
	u := &User{ID: "u1"}
	f := newFixture([]string{"t1", "t2"}, u)
	ctx := context.Background()

	multiple, err := f.svc.MultipleTeams(ctx, u)
	require.NoError(t, err)
	assert.True(t, multiple)
	assert.Equal(t, []string{"t1", "t2"}, f.repo.savedCaches["u1"]["default_memberships_team_ids"])

	require.NoError(t, f.svc.InvalidateAbilityCache(ctx, "u1"))
	assert.Empty(t, f.repo.savedCaches["u1"])
}

func TestNilAbility(t *testing.T) {
	f := newFixture(nil)

	assert.Nil(t, f.svc.Ability(nil))
}
