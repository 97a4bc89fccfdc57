// AngelaMos | 2026
// repository.go

package membership

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/teams-backend/internal/abilitycache"
	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

type Repository interface {
	Create(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id string) (*Membership, error)
	FindByUserAndTeam(ctx context.Context, userID, teamID string) (*Membership, error)
	ExistsForUserAndTeam(ctx context.Context, userID, teamID string) (bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Membership, error)
	CountAdmins(ctx context.Context, teamID string) (int, error)
	UpdateRoles(ctx context.Context, id string, roleIDs role.IDs) error
	SyncUserFields(ctx context.Context, userID, firstName, lastName, email string, profilePhotoID *string) error
	Claim(ctx context.Context, invitationID string, member Member) (*Membership, error)
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) ([]string, error)
	ClearCurrentTeam(ctx context.Context, userID, teamID string) error
	TargetIDs(ctx context.Context, userID, targetColumn string, r *role.Role) ([]string, error)
}

const membershipColumns = `
	id, team_id, user_id, platform_agent_of_id, invitation_id, added_by_id,
	user_first_name, user_last_name, user_email, user_profile_photo_id,
	role_ids, created_at, updated_at`

// targetColumns whitelists the columns TargetIDs may select.
var targetColumns = map[string]struct{}{
	"team_id": {},
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Membership) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("create membership: %w: %w", core.ErrInvalidInput, err)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.RoleIDs == nil {
		m.RoleIDs = role.IDs{}
	}

	query := `
		INSERT INTO memberships (
			id, team_id, user_id, platform_agent_of_id, invitation_id, added_by_id,
			user_first_name, user_last_name, user_email, user_profile_photo_id, role_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, m, query,
		m.ID,
		m.TeamID,
		m.UserID,
		m.PlatformAgentOfID,
		m.InvitationID,
		m.AddedByID,
		m.UserFirstName,
		m.UserLastName,
		m.UserEmail,
		m.UserProfilePhotoID,
		m.RoleIDs,
	)
	return core.TranslateDBError("create membership", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`

	var m Membership
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, core.TranslateDBError("get membership", err)
	}
	return &m, nil
}

func (r *repository) FindByUserAndTeam(
	ctx context.Context,
	userID, teamID string,
) (*Membership, error) {
	query := `SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1 AND team_id = $2`

	var m Membership
	if err := r.db.GetContext(ctx, &m, query, userID, teamID); err != nil {
		return nil, core.TranslateDBError("find membership", err)
	}
	return &m, nil
}

func (r *repository) ExistsForUserAndTeam(
	ctx context.Context,
	userID, teamID string,
) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM memberships WHERE user_id = $1 AND team_id = $2
	)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, teamID); err != nil {
		return false, fmt.Errorf("check membership exists: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByTeam(ctx context.Context, teamID string) ([]Membership, error) {
	query := `SELECT ` + membershipColumns + `
		FROM memberships
		WHERE team_id = $1
		ORDER BY created_at ASC, id ASC`

	var out []Membership
	if err := r.db.SelectContext(ctx, &out, query, teamID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}

func (r *repository) CountAdmins(ctx context.Context, teamID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM memberships
		WHERE team_id = $1 AND user_id IS NOT NULL
		  AND jsonb_exists_any(role_ids, $2)`

	var n int
	if err := r.db.GetContext(ctx, &n, query, teamID, role.Granting(role.Admin)); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *repository) UpdateRoles(ctx context.Context, id string, roleIDs role.IDs) error {
	query := `
		UPDATE memberships
		SET role_ids = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, roleIDs)
	if err != nil {
		return fmt.Errorf("update membership roles: %w", err)
	}
	return core.RequireAffected("update membership roles", result)
}

// SyncUserFields rewrites the denormalized user columns on every membership
// the user holds. Zero rows is not an error.
func (r *repository) SyncUserFields(
	ctx context.Context,
	userID, firstName, lastName, email string,
	profilePhotoID *string,
) error {
	query := `
		UPDATE memberships
		SET user_first_name = $2, user_last_name = $3, user_email = $4,
		    user_profile_photo_id = $5, updated_at = NOW()
		WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, firstName, lastName, email, profilePhotoID); err != nil {
		return fmt.Errorf("sync membership user fields: %w", err)
	}
	return nil
}

// Claim attaches member to the pending membership created by the
// invitation and detaches it, so deleting the invitation afterwards leaves
// the claimed row alone. A membership that was already claimed is not found.
func (r *repository) Claim(
	ctx context.Context,
	invitationID string,
	member Member,
) (*Membership, error) {
	query := `
		UPDATE memberships
		SET user_id = $2, user_first_name = $3, user_last_name = $4,
		    user_email = $5, user_profile_photo_id = $6, invitation_id = NULL,
		    updated_at = NOW()
		WHERE invitation_id = $1 AND user_id IS NULL AND platform_agent_of_id IS NULL
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query,
		invitationID,
		member.UserID,
		member.FirstName,
		member.LastName,
		member.Email,
		member.ProfilePhotoID,
	)
	if err != nil {
		return nil, core.TranslateDBError("claim membership", err)
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return core.RequireAffected("delete membership", result)
}

// DeleteByTeam removes every membership of the team and returns the ids of
// the users that lost one.
func (r *repository) DeleteByTeam(ctx context.Context, teamID string) ([]string, error) {
	query := `
		DELETE FROM memberships
		WHERE team_id = $1
		RETURNING user_id`

	var userIDs []*string
	if err := r.db.SelectContext(ctx, &userIDs, query, teamID); err != nil {
		return nil, fmt.Errorf("delete team memberships: %w", err)
	}

	out := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out, nil
}

func (r *repository) ClearCurrentTeam(ctx context.Context, userID, teamID string) error {
	query := `
		UPDATE users
		SET current_team_id = NULL, updated_at = NOW()
		WHERE id = $1 AND current_team_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, teamID); err != nil {
		return fmt.Errorf("clear current team: %w", err)
	}
	return nil
}

// TargetIDs answers the ability cache: distinct values of targetColumn over
// the user's memberships, optionally restricted to those granting r.
func (r *repository) TargetIDs(
	ctx context.Context,
	userID, targetColumn string,
	filter *role.Role,
) ([]string, error) {
	if _, ok := targetColumns[targetColumn]; !ok {
		return nil, fmt.Errorf("target ids: column %q: %w", targetColumn, core.ErrInvalidInput)
	}

	query := `SELECT DISTINCT ` + targetColumn + ` FROM memberships WHERE user_id = $1`
	args := []any{userID}
	if filter != nil {
		query += ` AND jsonb_exists_any(role_ids, $2)`
		args = append(args, role.Granting(*filter))
	}
	query += ` ORDER BY ` + targetColumn

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("target ids: %w", err)
	}
	return ids, nil
}

var _ abilitycache.Relation = (*repository)(nil)
