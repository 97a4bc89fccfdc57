// AngelaMos | 2026
// role.go

package role

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Role is a named grant a membership can hold within a team. Exactly one
// role is the default: every membership implicitly holds it.
type Role struct {
	Key     string
	Default bool
	Manages []string
}

var (
	DefaultRole = Role{Key: "default", Default: true}
	Admin       = Role{Key: "admin", Manages: []string{"default", "editor"}}
	Editor      = Role{Key: "editor"}
)

var registry = map[string]Role{
	DefaultRole.Key: DefaultRole,
	Admin.Key:       Admin,
	Editor.Key:      Editor,
}

func Lookup(key string) (Role, bool) {
	r, ok := registry[key]
	return r, ok
}

// Assignable lists the role keys that may be stored on a membership.
func Assignable() []string {
	keys := make([]string, 0, len(registry))
	for k, r := range registry {
		if !r.Default {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Granting lists the stored role keys whose holders are granted r.
func Granting(r Role) []string {
	keys := make([]string, 0, len(registry))
	for k, held := range registry {
		if !held.Default && held.Includes(r) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (r Role) String() string {
	return r.Key
}

// Includes reports whether holding r also grants other.
func (r Role) Includes(other Role) bool {
	return r.Key == other.Key || other.Default || slices.Contains(r.Manages, other.Key)
}

// IDs is the role_ids JSONB column: an unordered set of role keys.
type IDs []string

func (ids IDs) Has(r Role) bool {
	if r.Default {
		return true
	}
	for _, key := range ids {
		held, ok := Lookup(key)
		if ok && held.Includes(r) {
			return true
		}
	}
	return false
}

// Normalize drops duplicates and default keys and validates the rest.
func (ids IDs) Normalize() (IDs, error) {
	out := make(IDs, 0, len(ids))
	for _, key := range ids {
		r, ok := Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", key)
		}
		if r.Default || slices.Contains(out, key) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func (ids IDs) Value() (driver.Value, error) {
	if ids == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(ids))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ids *IDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*ids = IDs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("role ids: unsupported type %T", src)
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return fmt.Errorf("role ids: %w", err)
	}
	*ids = keys
	return nil
}
