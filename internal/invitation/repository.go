// AngelaMos | 2026
// repository.go

package invitation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
)

type Repository interface {
	CreateWithMembership(ctx context.Context, inv *Invitation, pending *membership.Membership) error
	GetByUUID(ctx context.Context, token string) (*Invitation, error)
	ListByTeam(ctx context.Context, teamID string) ([]Invitation, error)
	Accept(ctx context.Context, inv *Invitation, member membership.Member) (*membership.Membership, error)
}

const invitationColumns = `
	id, email, uuid, from_membership_id, team_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithMembership stores the invitation together with the pending
// membership that will carry the invitee's roles.
func (r *repository) CreateWithMembership(
	ctx context.Context,
	inv *Invitation,
	pending *membership.Membership,
) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.UUID == "" {
		inv.UUID = uuid.New().String()
	}

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO invitations (id, email, uuid, from_membership_id, team_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at`

		err := tx.GetContext(ctx, inv, query,
			inv.ID,
			inv.Email,
			inv.UUID,
			inv.FromMembershipID,
			inv.TeamID,
		)
		if err != nil {
			return core.TranslateDBError("create invitation", err)
		}

		pending.TeamID = inv.TeamID
		pending.InvitationID = &inv.ID
		return membership.NewRepository(tx).Create(ctx, pending)
	})
}

func (r *repository) GetByUUID(ctx context.Context, token string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE uuid = $1`

	var inv Invitation
	if err := r.db.GetContext(ctx, &inv, query, token); err != nil {
		return nil, core.TranslateDBError("get invitation", err)
	}
	return &inv, nil
}

func (r *repository) ListByTeam(ctx context.Context, teamID string) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC`

	var out []Invitation
	if err := r.db.SelectContext(ctx, &out, query, teamID); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return out, nil
}

// Accept claims the pending membership for member and deletes the
// invitation. Concurrent accepts race on the claim; the loser gets
// ErrNotFound.
func (r *repository) Accept(
	ctx context.Context,
	inv *Invitation,
	member membership.Member,
) (*membership.Membership, error) {
	var claimed *membership.Membership

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		m, err := membership.NewRepository(tx).Claim(ctx, inv.ID, member)
		if err != nil {
			return err
		}
		claimed = m

		result, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, inv.ID)
		if err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}
		return core.RequireAffected("delete invitation", result)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
