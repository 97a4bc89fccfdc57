// AngelaMos | 2026
// migrate.go

// Package migrations embeds the SQL schema and applies it in version order.
// Files are named NNNN_name.sql; applied versions are recorded in
// schema_migrations.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
)

//go:embed *.sql
var files embed.FS

// advisoryLockKey keeps two migrators from interleaving.
const advisoryLockKey = 0x7465616d73

const schemaTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type Migration struct {
	Version int
	Name    string
	SQL     string
}

func (m Migration) String() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// Load returns the embedded migrations, oldest first.
func Load() ([]Migration, error) {
	return load(files)
}

func load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	out := make([]Migration, 0, len(names))
	seen := make(map[int]string, len(names))

	for _, name := range names {
		num, label, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if !ok || label == "" {
			return nil, fmt.Errorf("migration %s: want NNNN_name.sql", name)
		}

		version, err := strconv.Atoi(num)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: bad version %q", name, num)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, prev)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		out = append(out, Migration{Version: version, Name: label, SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending returns the migrations newer than applied.
func Pending(all []Migration, applied int) []Migration {
	i := sort.Search(len(all), func(i int) bool { return all[i].Version > applied })
	return all[i:]
}

// Up applies every pending migration in a single transaction and returns
// the ones it ran. A failing migration leaves the schema untouched.
func Up(ctx context.Context, db *sqlx.DB, logger *slog.Logger) ([]Migration, error) {
	if logger == nil {
		logger = slog.Default()
	}

	all, err := Load()
	if err != nil {
		return nil, err
	}

	var ran []Migration
	err = core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
			return fmt.Errorf("lock migrations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, schemaTable); err != nil {
			return fmt.Errorf("create schema_migrations: %w", err)
		}

		var applied int
		query := `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`
		if err := tx.GetContext(ctx, &applied, query); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}

		for _, m := range Pending(all, applied) {
			logger.Info("applying migration", "version", m.Version, "name", m.Name)

			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("migration %s: %w", m, err)
			}

			insert := `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`
			if _, err := tx.ExecContext(ctx, insert, m.Version, m.Name); err != nil {
				return fmt.Errorf("record migration %s: %w", m, err)
			}
			ran = append(ran, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ran, nil
}
