// AngelaMos | 2026
// jobs_test.go

package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/teams-backend/internal/identity"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type identities struct {
	made []*identity.Context
}

func (i *identities) next() *identity.Context {
	c := identity.New(nil, nil)
	i.made = append(i.made, c)
	return c
}

func TestRunNowUnknownJob(t *testing.T) {
	ids := &identities{}
	s := NewScheduler(ids.next, 0, discardLogger())

	err := s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRegisterRejectsDuplicatesAndBadSchedules(t *testing.T) {
	ids := &identities{}
	s := NewScheduler(ids.next, 0, discardLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register("a", "@every 1h", noop))
	assert.Error(t, s.Register("a", "@every 1h", noop))
	assert.Error(t, s.Register("b", "not a schedule", noop))
}

func TestEachRunGetsItsOwnResetIdentity(t *testing.T) {
	ids := &identities{}
	s := NewScheduler(ids.next, time.Second, discardLogger())

	var seen []*identity.Context
	require.NoError(t, s.Register("tick", "@every 1h", func(ctx context.Context) error {
		ident := identity.FromContext(ctx)
		require.NotNil(t, ident)
		assert.Nil(t, ident.Team())
		require.NoError(t, ident.SetTeam(ctx, &team.Team{ID: "t1"}))
		seen = append(seen, ident)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, s.RunNow(ctx, "tick"))
	require.NoError(t, s.RunNow(ctx, "tick"))

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	for _, ident := range seen {
		assert.Nil(t, ident.Team())
	}
}

func TestRunNowReturnsJobError(t *testing.T) {
	ids := &identities{}
	s := NewScheduler(ids.next, 0, discardLogger())
	boom := errors.New("boom")

	require.NoError(t, s.Register("fails", "@every 1h", func(context.Context) error {
		return boom
	}))

	assert.ErrorIs(t, s.RunNow(context.Background(), "fails"), boom)
}

func TestStartStop(t *testing.T) {
	ids := &identities{}
	s := NewScheduler(ids.next, 0, discardLogger())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

type fakeTeams struct {
	pending  []team.Team
	failing  map[string]error
	torn     []string
	teamSeen []string
	listErr  error
}

func (f *fakeTeams) PendingTeardown(_ context.Context, limit int) ([]team.Team, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeTeams) Teardown(ctx context.Context, teamID string) error {
	if t := identity.FromContext(ctx).Team(); t != nil {
		f.teamSeen = append(f.teamSeen, t.ID)
	}
	if err := f.failing[teamID]; err != nil {
		return err
	}
	f.torn = append(f.torn, teamID)
	return nil
}

func TestTeamTeardownContinuesPastFailures(t *testing.T) {
	boom := errors.New("locked")
	teams := &fakeTeams{
		pending: []team.Team{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}},
		failing: map[string]error{"t2": boom},
	}
	job := NewTeamTeardown(teams, 10, discardLogger())

	ident := identity.New(nil, nil)
	ctx := identity.WithContext(context.Background(), ident)

	err := job.Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"t1", "t3"}, teams.torn)
	assert.Equal(t, []string{"t1", "t2", "t3"}, teams.teamSeen)
	assert.Nil(t, ident.Team())
}

func TestTeamTeardownBatchAndListError(t *testing.T) {
	teams := &fakeTeams{pending: []team.Team{{ID: "t1"}, {ID: "t2"}}}
	job := NewTeamTeardown(teams, 1, discardLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"t1"}, teams.torn)

	teams.listErr = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}
