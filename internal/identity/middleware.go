// AngelaMos | 2026
// middleware.go

package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/middleware"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
	"github.com/carterperez-dev/templates/teams-backend/internal/user"
)

type UserLoader interface {
	Abilities
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type TeamLoader interface {
	Get(ctx context.Context, id string) (*team.Team, error)
}

type Middleware struct {
	users           UserLoader
	teams           TeamLoader
	memberships     MembershipFinder
	resolver        i18n.Resolver
	developerEmails []string
	logger          *slog.Logger
}

func NewMiddleware(
	users UserLoader,
	teams TeamLoader,
	memberships MembershipFinder,
	resolver i18n.Resolver,
	developerEmails []string,
	logger *slog.Logger,
) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		users:           users,
		teams:           teams,
		memberships:     memberships,
		resolver:        resolver,
		developerEmails: developerEmails,
		logger:          logger,
	}
}

// Identify builds a fresh Context for the authenticated user and clears it
// when the request ends. It must run after middleware.Authenticator.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := middleware.GetUserID(ctx)
		if userID == "" {
			core.Unauthorized(w, "")
			return
		}

		u, err := m.users.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				core.Unauthorized(w, "")
				return
			}
			core.InternalServerError(w, err)
			return
		}

		ident := New(m.users, m.memberships)
		defer ident.Reset()

		if err := ident.SetUser(ctx, u); err != nil {
			core.InternalServerError(w, err)
			return
		}

		ctx = WithContext(ctx, ident)
		ctx = i18n.WithLocale(ctx, m.resolver.Resolve(u, nil))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Team loads the {teamID} route team into the Context. Users who are not
// members get a 404 so team ids do not leak.
func (m *Middleware) Team(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ident := FromContext(ctx)
		if ident.User() == nil {
			core.Unauthorized(w, "")
			return
		}

		t, err := m.teams.Get(ctx, chi.URLParam(r, "teamID"))
		if err != nil {
			core.Fail(w, err, "team")
			return
		}

		if err := ident.SetTeam(ctx, t); err != nil {
			core.InternalServerError(w, err)
			return
		}

		if ident.Membership() == nil {
			m.logger.DebugContext(ctx, "team access denied",
				"user_id", ident.User().ID,
				"team_id", t.ID,
			)
			core.NotFound(w, "team")
			return
		}

		ctx = i18n.WithLocale(ctx, m.resolver.Resolve(ident.User(), t))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireDeveloper admits only users listed in the developer emails.
func (m *Middleware) RequireDeveloper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).User().IsDeveloper(m.developerEmails) {
			core.Forbidden(w, "developer access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
