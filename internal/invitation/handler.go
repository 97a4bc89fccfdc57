// AngelaMos | 2026
// handler.go

package invitation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/dates"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
)

// Scope exposes the per-request identity the handlers act under.
type Scope struct {
	Member    func(ctx context.Context) (membership.Member, bool)
	Actor     func(ctx context.Context) *membership.Membership
	Team      func(ctx context.Context) *team.Team
	Formatter func(ctx context.Context) dates.Formatter
}

type TeamFinder interface {
	Get(ctx context.Context, id string) (*team.Team, error)
}

type Handler struct {
	service    *Service
	teams      TeamFinder
	translator *i18n.Translator
	scope      Scope
	validator  *validator.Validate
}

func NewHandler(
	service *Service,
	teams TeamFinder,
	translator *i18n.Translator,
	scope Scope,
) *Handler {
	return &Handler{
		service:    service,
		teams:      teams,
		translator: translator,
		scope:      scope,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterTeamRoutes mounts under a router already scoped to
// /teams/{teamID}.
func (h *Handler) RegisterTeamRoutes(r chi.Router) {
	r.Route("/invitations", func(r chi.Router) {
		r.Use(i18n.Scoped("account.invitations"))

		r.Get("/", h.List)
		r.Post("/", h.Invite)
	})
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated func(http.Handler) http.Handler,
) {
	r.Route("/invitations", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(i18n.Scoped("invitations"))

		r.Post("/{uuid}/accept", h.Accept)
	})
}

func (h *Handler) toResponse(ctx context.Context, inv *Invitation) Response {
	created := inv.CreatedAt
	return Response{
		ID:        inv.ID,
		Email:     inv.Email,
		TeamID:    inv.TeamID,
		CreatedAt: inv.CreatedAt,
		Sent:      h.scope.Formatter(ctx).DisplayRelative(&created),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitations, err := h.service.List(ctx, chi.URLParam(r, "teamID"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	items := make([]Response, 0, len(invitations))
	for i := range invitations {
		items = append(items, h.toResponse(ctx, &invitations[i]))
	}

	core.OK(w, ListResponse{Items: items})
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.Invite(ctx, h.scope.Actor(ctx), chi.URLParam(r, "teamID"), req)
	if err != nil {
		core.Fail(w, err, "invitation")
		return
	}

	core.Created(w, inviteResponse{
		Invitation: h.toResponse(ctx, inv),
		Notice: h.translator.MustT(ctx, ".notifications.created",
			i18n.WithObjects(inv, h.scope.Team(ctx))),
	})
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member, ok := h.scope.Member(ctx)
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	m, err := h.service.Accept(ctx, chi.URLParam(r, "uuid"), member)
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			core.JSONError(w, core.NewAppError(
				err,
				h.translator.MustT(ctx, ".errors.already_member"),
				http.StatusConflict,
				"ALREADY_MEMBER",
			))
			return
		}
		core.Fail(w, err, "invitation")
		return
	}

	var teamName string
	if t, err := h.teams.Get(ctx, m.TeamID); err == nil {
		teamName = t.Name
	}

	core.OK(w, acceptResponse{
		Membership: membership.ToResponse(m),
		Notice: h.translator.MustT(ctx, ".notifications.accepted",
			i18n.WithVar("team_name", teamName)),
	})
}
