// AngelaMos | 2026
// role_test.go

package role

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsHas(t *testing.T) {
	admin := IDs{"admin"}
	editor := IDs{"editor"}
	none := IDs{}

	assert.True(t, admin.Has(Admin))
	assert.True(t, admin.Has(Editor))
	assert.True(t, admin.Has(DefaultRole))
	assert.False(t, editor.Has(Admin))
	assert.True(t, none.Has(DefaultRole))
	assert.False(t, none.Has(Editor))
}

func TestIDsNormalize(t *testing.T) {
	got, err := IDs{"editor", "default", "admin", "editor"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, IDs{"admin", "editor"}, got)

	_, err = IDs{"owner"}.Normalize()
	assert.Error(t, err)
}

func TestIDsScan(t *testing.T) {
	var ids IDs
	require.NoError(t, ids.Scan([]byte(`["admin"]`)))
	assert.Equal(t, IDs{"admin"}, ids)

	require.NoError(t, ids.Scan(nil))
	assert.Empty(t, ids)

	assert.Error(t, ids.Scan(42))

	v, err := IDs(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestAssignable(t *testing.T) {
	assert.Equal(t, []string{"admin", "editor"}, Assignable())
}

type stubResolver struct {
	ids   map[string][]string
	err   error
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, r Role, relation, target string) ([]string, error) {
	s.calls = append(s.calls, r.Key+"/"+relation+"/"+target)
	if s.err != nil {
		return nil, s.err
	}
	return s.ids[r.Key], nil
}

func TestAbilityCan(t *testing.T) {
	resolver := &stubResolver{ids: map[string][]string{
		"default": {"t1", "t2"},
		"admin":   {"t1"},
	}}
	a := NewAbility("u1", resolver)
	ctx := context.Background()

	ok, err := a.Can(ctx, ActionRead, "t2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Can(ctx, ActionManage, "t2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Can(ctx, ActionManage, "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{
		"default/memberships/team",
		"admin/memberships/team",
		"admin/memberships/team",
	}, resolver.calls)

	_, err = a.Can(ctx, Action("delete"), "t1")
	assert.Error(t, err)
}

func TestAbilityResolverError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAbility("u1", &stubResolver{err: boom})

	_, err := a.Can(context.Background(), ActionRead, "t1")
	assert.ErrorIs(t, err, boom)
}

func TestNilAbility(t *testing.T) {
	var a *Ability

	ok, err := a.Can(context.Background(), ActionRead, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, a.UserID())

	ids, err := a.TeamIDs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = a.AdministratingTeamIDs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = NewAbility("u1", nil).TeamIDs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestGranting(t *testing.T) {
	assert.Equal(t, []string{"admin"}, Granting(Admin))
	assert.Equal(t, []string{"admin", "editor"}, Granting(Editor))
	assert.Equal(t, []string{"admin", "editor"}, Granting(DefaultRole))
}
