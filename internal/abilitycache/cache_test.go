// AngelaMos | 2026
// cache_test.go

package abilitycache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

type countingRelation struct {
	ids     map[string][]string
	calls   int
	columns []string
	filters []*role.Role
}

func (r *countingRelation) TargetIDs(_ context.Context, _ string, column string, filter *role.Role) ([]string, error) {
	r.calls++
	r.columns = append(r.columns, column)
	r.filters = append(r.filters, filter)
	key := "any"
	if filter != nil {
		key = filter.Key
	}
	return r.ids[key], nil
}

type memoryStore struct {
	saved []Map
	err   error
}

func (s *memoryStore) SaveAbilityCache(_ context.Context, _ string, m Map) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, m)
	return nil
}

func newCache(entries Map) (*Cache, *countingRelation, *memoryStore) {
	rel := &countingRelation{ids: map[string][]string{
		"any":   {"t1", "t2"},
		"admin": {"t1"},
	}}
	store := &memoryStore{}
	f := NewFactory(store, map[string]Relation{"memberships": rel})
	return f.For("u1", entries), rel, store
}

func TestResolveCachesAfterFirstCall(t *testing.T) {
	c, rel, store := newCache(nil)
	ctx := context.Background()

	first, err := c.Resolve(ctx, role.Admin, "memberships", "team")
	require.NoError(t, err)
	second, err := c.Resolve(ctx, role.Admin, "memberships", "team")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rel.calls)
	assert.Equal(t, []string{"team_id"}, rel.columns)
	require.Len(t, store.saved, 1)
	assert.Equal(t, Map{"admin_memberships_team_ids": {"t1"}}, store.saved[0])
}

func TestResolveDefaultRoleHasNoFilter(t *testing.T) {
	c, rel, _ := newCache(nil)

	ids, err := c.Resolve(context.Background(), role.DefaultRole, "memberships", "team")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t2"}, ids)
	require.Len(t, rel.filters, 1)
	assert.Nil(t, rel.filters[0])
	assert.Contains(t, c.Entries(), "default_memberships_team_ids")
}

func TestResolvePersistsWholeMap(t *testing.T) {
	c, _, store := newCache(Map{"editor_memberships_team_ids": {"t9"}})
	ctx := context.Background()

	_, err := c.Resolve(ctx, role.Admin, "memberships", "team")
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, Map{
		"editor_memberships_team_ids": {"t9"},
		"admin_memberships_team_ids":  {"t1"},
	}, store.saved[0])
}

func TestResolveEmptyCachedValueIsMiss(t *testing.T) {
	c, rel, _ := newCache(Map{"admin_memberships_team_ids": {}})

	_, err := c.Resolve(context.Background(), role.Admin, "memberships", "team")
	require.NoError(t, err)
	assert.Equal(t, 1, rel.calls)
}

func TestResolveSeededHit(t *testing.T) {
	c, rel, store := newCache(Map{"admin_memberships_team_ids": {"t5"}})

	ids, err := c.Resolve(context.Background(), role.Admin, "memberships", "team")
	require.NoError(t, err)
	assert.Equal(t, []string{"t5"}, ids)
	assert.Zero(t, rel.calls)
	assert.Empty(t, store.saved)
}

func TestResolveUnknownRelation(t *testing.T) {
	c, _, _ := newCache(nil)

	_, err := c.Resolve(context.Background(), role.Admin, "projects", "team")
	assert.Error(t, err)
}

func TestResolveStoreFailureLeavesEntriesUntouched(t *testing.T) {
	c, _, store := newCache(nil)
	store.err = errors.New("db down")

	_, err := c.Resolve(context.Background(), role.Admin, "memberships", "team")
	assert.ErrorIs(t, err, store.err)
	assert.Empty(t, c.Entries())
}

func TestInvalidate(t *testing.T) {
	c, rel, store := newCache(Map{"admin_memberships_team_ids": {"t5"}})
	ctx := context.Background()

	require.NoError(t, c.Invalidate(ctx))
	assert.Empty(t, c.Entries())
	require.Len(t, store.saved, 1)
	assert.Empty(t, store.saved[0])

	_, err := c.Resolve(ctx, role.Admin, "memberships", "team")
	require.NoError(t, err)
	assert.Equal(t, 1, rel.calls)
}

func TestMapScan(t *testing.T) {
	var m Map
	require.NoError(t, m.Scan([]byte(`{"admin_memberships_team_ids":["t1"]}`)))
	assert.Equal(t, Map{"admin_memberships_team_ids": {"t1"}}, m)

	for _, corrupt := range []any{[]byte(`"oops"`), []byte(`[1,2]`), "not json", nil, 42} {
		require.NoError(t, m.Scan(corrupt))
		assert.Empty(t, m)
		assert.NotNil(t, m)
	}
}

func TestMapValue(t *testing.T) {
	v, err := Map(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = Map{"k": {"a"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":["a"]}`, v.(string))
}
