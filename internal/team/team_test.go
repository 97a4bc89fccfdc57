// AngelaMos | 2026
// team_test.go

package team

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"Café Münster", "cafe-munster"},
		{"  --Hello,   World!!  ", "hello-world"},
		{"Ærø 2024", "r-2024"},
		{"日本チーム", "team"},
		{"", "team"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := ""
	for range 20 {
		long += "abcd "
	}
	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.NotEqual(t, '-', rune(slug[len(slug)-1]))
}

type fakeRepo struct {
	Repository
	slugs    map[string]bool
	created  []*Team
	owners   []*membership.Membership
	teardown map[string][]string
	teams    map[string]Team
	listed   []string
}

func (f *fakeRepo) ListByIDs(_ context.Context, ids []string) ([]Team, error) {
	f.listed = ids
	var out []Team
	for _, id := range ids {
		if t, ok := f.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.slugs[slug], nil
}

func (f *fakeRepo) CreateWithMembership(_ context.Context, t *Team, m *membership.Membership) error {
	t.ID = "team-" + t.Slug
	m.TeamID = t.ID
	f.created = append(f.created, t)
	f.owners = append(f.owners, m)
	return nil
}

func (f *fakeRepo) Teardown(_ context.Context, id string) ([]string, error) {
	return f.teardown[id], nil
}

func (f *fakeRepo) Update(context.Context, *Team) error { return nil }

func (f *fakeRepo) MarkBeingDestroyed(context.Context, string) error { return nil }

type recordingInvalidator struct{ users []string }

func (r *recordingInvalidator) InvalidateAbilityCache(_ context.Context, userID string) error {
	r.users = append(r.users, userID)
	return nil
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yml"),
		[]byte("en:\n  teams:\n    new:\n      default_team_name: Your Team\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yml"),
		[]byte("de:\n  teams:\n    new:\n      default_team_name: Dein Team\n"), 0o600))

	catalog, err := i18n.LoadCatalog(dir, "en", true)
	require.NoError(t, err)
	return i18n.NewTranslator(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

var owner = membership.Member{UserID: "u1", FirstName: "Jo", Email: "jo@example.com"}

func TestCreateMakesOwnerAdmin(t *testing.T) {
	repo := &fakeRepo{slugs: map[string]bool{}}
	caches := &recordingInvalidator{}
	svc := NewService(repo, caches, newTranslator(t))

	team, m, err := svc.Create(context.Background(), owner, CreateRequest{Name: "<b>Acme</b> Corp", Locale: "pt_br"})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", team.Name)
	assert.Equal(t, "acme-corp", team.Slug)
	assert.Equal(t, "pt-BR", team.Locale)
	assert.True(t, m.HasRole(role.Admin))
	assert.True(t, m.BelongsTo("u1"))
	assert.Equal(t, "jo@example.com", m.UserEmail)
	assert.Equal(t, []string{"u1"}, caches.users)
}

func TestCreateSuffixesTakenSlug(t *testing.T) {
	repo := &fakeRepo{slugs: map[string]bool{"acme": true, "acme-2": true}}
	svc := NewService(repo, &recordingInvalidator{}, newTranslator(t))

	team, _, err := svc.Create(context.Background(), owner, CreateRequest{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme-3", team.Slug)
}

func TestCreateRejectsMarkupOnlyName(t *testing.T) {
	svc := NewService(&fakeRepo{slugs: map[string]bool{}}, &recordingInvalidator{}, newTranslator(t))

	_, _, err := svc.Create(context.Background(), owner, CreateRequest{Name: "<script></script>"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateDefaultUsesLocalizedName(t *testing.T) {
	repo := &fakeRepo{slugs: map[string]bool{}}
	svc := NewService(repo, &recordingInvalidator{}, newTranslator(t))
	ctx := context.Background()

	team, err := svc.CreateDefault(ctx, owner, "", "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Your Team", team.Name)
	assert.Equal(t, "Europe/Berlin", team.TimeZone)

	team, err = svc.CreateDefault(ctx, owner, "de", "")
	require.NoError(t, err)
	assert.Equal(t, "Dein Team", team.Name)
	assert.Equal(t, "de", team.Locale)
}

type stubResolver struct {
	read, admin []string
}

func (s stubResolver) Resolve(_ context.Context, r role.Role, _, _ string) ([]string, error) {
	if r.Key == role.Admin.Key {
		return s.admin, nil
	}
	return s.read, nil
}

func TestUpdateRequiresManage(t *testing.T) {
	svc := NewService(&fakeRepo{}, &recordingInvalidator{}, newTranslator(t))
	team := &Team{ID: "t1", Name: "Acme"}
	editor := role.NewAbility("u1", stubResolver{read: []string{"t1"}})
	admin := role.NewAbility("u1", stubResolver{read: []string{"t1", "t2"}, admin: []string{"t1"}})
	name := "Renamed"
	ctx := context.Background()

	_, err := svc.Update(ctx, editor, team, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Update(ctx, nil, team, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.Update(ctx, admin, team, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "Acme", team.Name)

	assert.ErrorIs(t, svc.Destroy(ctx, editor, "t1"), core.ErrForbidden)
	assert.ErrorIs(t, svc.Destroy(ctx, admin, "t2"), core.ErrForbidden)
	assert.NoError(t, svc.Destroy(ctx, admin, "t1"))

	var nobody *role.Ability
	assert.ErrorIs(t, svc.Destroy(ctx, nobody, "t1"), core.ErrForbidden)
}

func TestListReadsTeamIDsFromAbility(t *testing.T) {
	repo := &fakeRepo{teams: map[string]Team{
		"t1": {ID: "t1", Name: "Beta"},
		"t2": {ID: "t2", Name: "Acme"},
		"t3": {ID: "t3", Name: "Hidden"},
	}}
	svc := NewService(repo, &recordingInvalidator{}, newTranslator(t))
	ctx := context.Background()

	teams, err := svc.List(ctx, role.NewAbility("u1", stubResolver{read: []string{"t1", "t2"}}))
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, []string{"t1", "t2"}, repo.listed)

	teams, err = svc.List(ctx, role.NewAbility("u1", stubResolver{}))
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Equal(t, []string{"t1", "t2"}, repo.listed)
}

func TestTeardownInvalidatesFormerMembers(t *testing.T) {
	repo := &fakeRepo{teardown: map[string][]string{"t1": {"u1", "u2"}}}
	caches := &recordingInvalidator{}
	svc := NewService(repo, caches, newTranslator(t))

	require.NoError(t, svc.Teardown(context.Background(), "t1"))
	assert.Equal(t, []string{"u1", "u2"}, caches.users)
}

func TestTeamModel(t *testing.T) {
	var nilTeam *Team
	assert.Empty(t, nilTeam.PreferredLocale())

	team := &Team{Name: "Acme", Locale: "de"}
	assert.Equal(t, "de", team.PreferredLocale())
	assert.Equal(t, map[string]string{
		"team_name":        "Acme",
		"teams_possessive": "Acme's",
	}, i18n.Build("en", team))
}
