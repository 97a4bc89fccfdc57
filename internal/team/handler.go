// AngelaMos | 2026
// handler.go

package team

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/dates"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
)

// Scope exposes the per-request identity the handlers act under.
type Scope struct {
	Member    func(ctx context.Context) (membership.Member, bool)
	Ability   func(ctx context.Context) *role.Ability
	Team      func(ctx context.Context) *Team
	Formatter func(ctx context.Context) dates.Formatter
}

type Handler struct {
	service    *Service
	translator *i18n.Translator
	scope      Scope
	validator  *validator.Validate
}

func NewHandler(service *Service, translator *i18n.Translator, scope Scope) *Handler {
	return &Handler{
		service:    service,
		translator: translator,
		scope:      scope,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /teams. teamScoped loads {teamID} into the request
// identity; nested mounts further team resources beneath it.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	teamScoped func(http.Handler) http.Handler,
	nested ...func(chi.Router),
) {
	r.Route("/teams", func(r chi.Router) {
		r.Use(i18n.Scoped("account.teams"))

		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{teamID}", func(r chi.Router) {
			r.Use(teamScoped)

			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Destroy)

			for _, mount := range nested {
				mount(r)
			}
		})
	})
}

func (h *Handler) toResponse(ctx context.Context, t *Team) Response {
	created := t.CreatedAt
	return Response{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		TimeZone:  t.TimeZone,
		Locale:    t.Locale,
		CreatedAt: t.CreatedAt,
		Created:   h.scope.Formatter(ctx).DisplayDateAndTime(&created, "", ""),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ability := h.scope.Ability(ctx)
	if ability == nil {
		core.Unauthorized(w, "")
		return
	}

	teams, err := h.service.List(ctx, ability)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	items := make([]Response, 0, len(teams))
	for i := range teams {
		items = append(items, h.toResponse(ctx, &teams[i]))
	}

	core.OK(w, ListResponse{Items: items})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member, ok := h.scope.Member(ctx)
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	team, _, err := h.service.Create(ctx, member, req)
	if err != nil {
		core.Fail(w, err, "team")
		return
	}

	resp := h.toResponse(ctx, team)
	core.Created(w, noticeResponse{
		Team:   &resp,
		Notice: h.translator.MustT(ctx, ".notifications.created", i18n.WithObjects(team, nil)),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	team := h.scope.Team(r.Context())
	if team == nil {
		core.NotFound(w, "team")
		return
	}

	core.OK(w, h.toResponse(r.Context(), team))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	team := h.scope.Team(ctx)
	if team == nil {
		core.NotFound(w, "team")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	updated, err := h.service.Update(ctx, h.scope.Ability(ctx), team, req)
	if err != nil {
		core.Fail(w, err, "team")
		return
	}

	resp := h.toResponse(ctx, updated)
	core.OK(w, noticeResponse{
		Team:   &resp,
		Notice: h.translator.MustT(ctx, ".notifications.updated", i18n.WithObjects(updated, nil)),
	})
}

func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	team := h.scope.Team(ctx)
	if team == nil {
		core.NotFound(w, "team")
		return
	}

	if err := h.service.Destroy(ctx, h.scope.Ability(ctx), team.ID); err != nil {
		core.Fail(w, err, "team")
		return
	}

	core.OK(w, noticeResponse{
		Notice: h.translator.MustT(ctx, ".notifications.destroyed", i18n.WithObjects(team, nil)),
	})
}

// ParamTeamID reads the team id path parameter.
func ParamTeamID(r *http.Request) string {
	return chi.URLParam(r, "teamID")
}
