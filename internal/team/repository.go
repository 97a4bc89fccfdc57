// AngelaMos | 2026
// repository.go

package team

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
)

type Repository interface {
	CreateWithMembership(ctx context.Context, team *Team, owner *membership.Membership) error
	GetByID(ctx context.Context, id string) (*Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]Team, error)
	Update(ctx context.Context, team *Team) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	MarkBeingDestroyed(ctx context.Context, id string) error
	ListBeingDestroyed(ctx context.Context, limit int) ([]Team, error)
	Teardown(ctx context.Context, id string) ([]string, error)
}

const teamColumns = `
	id, name, slug, being_destroyed, time_zone, locale, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithMembership inserts the team and its first membership in one
// transaction.
func (r *repository) CreateWithMembership(
	ctx context.Context,
	team *Team,
	owner *membership.Membership,
) error {
	if team.ID == "" {
		team.ID = uuid.New().String()
	}

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO teams (id, name, slug, time_zone, locale)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING being_destroyed, created_at, updated_at`

		err := tx.GetContext(ctx, team, query,
			team.ID,
			team.Name,
			team.Slug,
			team.TimeZone,
			team.Locale,
		)
		if err != nil {
			return core.TranslateDBError("create team", err)
		}

		owner.TeamID = team.ID
		return membership.NewRepository(tx).Create(ctx, owner)
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	var team Team
	if err := r.db.GetContext(ctx, &team, query, id); err != nil {
		return nil, core.TranslateDBError("get team", err)
	}
	return &team, nil
}

// ListByIDs skips teams flagged for teardown.
func (r *repository) ListByIDs(ctx context.Context, ids []string) ([]Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE id = ANY($1) AND being_destroyed = FALSE
		ORDER BY name ASC, id ASC`

	var teams []Team
	if err := r.db.SelectContext(ctx, &teams, query, ids); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (r *repository) Update(ctx context.Context, team *Team) error {
	query := `
		UPDATE teams
		SET name = $2, time_zone = $3, locale = $4, updated_at = NOW()
		WHERE id = $1 AND being_destroyed = FALSE
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &team.UpdatedAt, query,
		team.ID,
		team.Name,
		team.TimeZone,
		team.Locale,
	)
	return core.TranslateDBError("update team", err)
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM teams WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *repository) MarkBeingDestroyed(ctx context.Context, id string) error {
	query := `
		UPDATE teams
		SET being_destroyed = TRUE, updated_at = NOW()
		WHERE id = $1 AND being_destroyed = FALSE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark team destroyed: %w", err)
	}
	return core.RequireAffected("mark team destroyed", result)
}

func (r *repository) ListBeingDestroyed(ctx context.Context, limit int) ([]Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE being_destroyed = TRUE
		ORDER BY updated_at ASC
		LIMIT $1`

	var teams []Team
	if err := r.db.SelectContext(ctx, &teams, query, limit); err != nil {
		return nil, fmt.Errorf("list destroyed teams: %w", err)
	}
	return teams, nil
}

// Teardown deletes the team with its invitations and memberships and
// returns the ids of users who were members.
func (r *repository) Teardown(ctx context.Context, id string) ([]string, error) {
	var userIDs []string

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		memberships := membership.NewRepository(tx)

		removed, err := memberships.DeleteByTeam(ctx, id)
		if err != nil {
			return err
		}
		userIDs = removed

		if _, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE team_id = $1`, id); err != nil {
			return fmt.Errorf("delete team invitations: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET current_team_id = NULL, updated_at = NOW() WHERE current_team_id = $1`,
			id,
		); err != nil {
			return fmt.Errorf("clear current team: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return core.RequireAffected("delete team", result)
	})
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// Zones writes team time zones through any DBTX, so a profile update can
// run it inside its own transaction.
type Zones struct {
	db core.DBTX
}

func NewZones(db core.DBTX) *Zones {
	return &Zones{db: db}
}

// AdoptTimeZoneForSoleMember gives timeZone to every team that has none and
// whose only member is userID.
func (z *Zones) AdoptTimeZoneForSoleMember(
	ctx context.Context,
	userID, timeZone string,
) (int64, error) {
	query := `
		UPDATE teams t
		SET time_zone = $2, updated_at = NOW()
		WHERE (t.time_zone IS NULL OR t.time_zone = '')
		  AND t.id IN (
			SELECT m.team_id FROM memberships m
			WHERE m.user_id = $1
		  )
		  AND (SELECT COUNT(*) FROM memberships m WHERE m.team_id = t.id) = 1`

	result, err := z.db.ExecContext(ctx, query, userID, timeZone)
	if err != nil {
		return 0, fmt.Errorf("adopt team time zone: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adopt team time zone: %w", err)
	}
	return n, nil
}
