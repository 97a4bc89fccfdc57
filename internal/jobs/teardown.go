// AngelaMos | 2026
// teardown.go

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/templates/teams-backend/internal/identity"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
)

const (
	TeamTeardownName = "team_teardown"

	defaultTeardownBatch = 50
)

type TeamTeardowner interface {
	PendingTeardown(ctx context.Context, limit int) ([]team.Team, error)
	Teardown(ctx context.Context, teamID string) error
}

// TeamTeardown deletes teams flagged as being destroyed, one batch per run.
type TeamTeardown struct {
	teams  TeamTeardowner
	batch  int
	logger *slog.Logger
}

func NewTeamTeardown(teams TeamTeardowner, batch int, logger *slog.Logger) *TeamTeardown {
	if batch <= 0 {
		batch = defaultTeardownBatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamTeardown{teams: teams, batch: batch, logger: logger}
}

// Run keeps going past a failing team; all failures are joined.
func (j *TeamTeardown) Run(ctx context.Context) error {
	pending, err := j.teams.PendingTeardown(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list teams pending teardown: %w", err)
	}

	ident := identity.FromContext(ctx)

	var errs []error
	for i := range pending {
		t := &pending[i]

		if ident != nil {
			if err := ident.SetTeam(ctx, t); err != nil {
				errs = append(errs, err)
				continue
			}
		}

		if err := j.teams.Teardown(ctx, t.ID); err != nil {
			errs = append(errs, fmt.Errorf("team %s: %w", t.ID, err))
			continue
		}

		j.logger.Info("team torn down",
			"team_id", t.ID,
			"slug", t.Slug,
			"flagged", ident.Formatter().DisplayRelative(&t.UpdatedAt),
		)
	}

	if ident != nil {
		//nolint:errcheck // clearing a team never looks anything up
		_ = ident.SetTeam(ctx, nil)
	}

	return errors.Join(errs...)
}
