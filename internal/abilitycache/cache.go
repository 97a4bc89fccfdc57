// AngelaMos | 2026
// cache.go

// Package abilitycache memoizes, per user, which parent records the user
// holds a given role for. The map is persisted on the user row so the
// answer survives across requests until invalidated.
package abilitycache

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

var lookupCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "teams",
	Subsystem: "abilitycache",
	Name:      "lookups_total",
	Help:      "Ability cache lookups by result.",
}, []string{"result"})

// Map is the ability_cache JSONB column.
type Map map[string][]string

// Value writes the whole map; the column is never patched per key.
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string][]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan treats anything that is not a JSON object of string arrays as an
// empty cache.
func (m *Map) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}

	out := Map{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			out = Map{}
		}
	}
	*m = out
	return nil
}

// Store persists a user's full cache map in a single write.
type Store interface {
	SaveAbilityCache(ctx context.Context, userID string, m Map) error
}

// Relation lists distinct target ids reachable from a user. A nil role
// means any role qualifies.
type Relation interface {
	TargetIDs(ctx context.Context, userID, targetColumn string, r *role.Role) ([]string, error)
}

// Factory builds per-user caches over shared persistence.
type Factory struct {
	store     Store
	relations map[string]Relation
}

func NewFactory(store Store, relations map[string]Relation) *Factory {
	return &Factory{store: store, relations: relations}
}

func (f *Factory) For(userID string, entries Map) *Cache {
	return &Cache{
		userID:    userID,
		entries:   maps.Clone(entries),
		store:     f.store,
		relations: f.relations,
	}
}

// Cache is one user's view of the ability cache for the current unit of
// work. It is not safe for concurrent use; concurrent units of work each
// hold their own copy and the last persisted write wins.
type Cache struct {
	userID    string
	entries   Map
	store     Store
	relations map[string]Relation
}

func Key(r role.Role, relation, target string) string {
	return fmt.Sprintf("%s_%s_%s_ids", r.Key, relation, target)
}

func (c *Cache) Resolve(ctx context.Context, r role.Role, relation, target string) ([]string, error) {
	key := Key(r, relation, target)
	if cached := c.entries[key]; len(cached) > 0 {
		lookupCounter.WithLabelValues("hit").Inc()
		return slices.Clone(cached), nil
	}
	lookupCounter.WithLabelValues("miss").Inc()

	ctx, span := core.Tracer().Start(ctx, "abilitycache.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("abilitycache.key", key))

	rel, ok := c.relations[relation]
	if !ok {
		return nil, fmt.Errorf("ability cache: unknown relation %q", relation)
	}

	var filter *role.Role
	if !r.Default {
		filter = &r
	}

	ids, err := rel.TargetIDs(ctx, c.userID, target+"_id", filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ability cache %s: %w", key, err)
	}
	if ids == nil {
		ids = []string{}
	}

	next := maps.Clone(c.entries)
	if next == nil {
		next = Map{}
	}
	next[key] = ids

	if err := c.store.SaveAbilityCache(ctx, c.userID, next); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ability cache %s: %w", key, err)
	}
	c.entries = next

	return slices.Clone(ids), nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.store.SaveAbilityCache(ctx, c.userID, Map{}); err != nil {
		return fmt.Errorf("invalidate ability cache: %w", err)
	}
	c.entries = Map{}
	return nil
}

// Entries returns a copy of the current map.
func (c *Cache) Entries() Map {
	return maps.Clone(c.entries)
}

var _ role.ParentIDResolver = (*Cache)(nil)
