// AngelaMos | 2026
// handler.go

package membership

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
)

// Scope exposes the per-request identity the handlers act under.
type Scope struct {
	Actor func(ctx context.Context) *Membership
	Team  func(ctx context.Context) i18n.Model
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

// RegisterRoutes mounts under a router already scoped to /teams/{teamID}.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/memberships", func(r chi.Router) {
		r.Use(i18n.Scoped("account.memberships"))

		r.Get("/", h.List)
		r.Put("/{membershipID}", h.UpdateRoles)
		r.Delete("/{membershipID}", h.Remove)
	})
}

type noticeResponse struct {
	Membership *Response `json:"membership,omitempty"`
	Notice     string    `json:"notice"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	memberships, err := h.service.ListForTeam(r.Context(), teamID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	items := make([]Response, 0, len(memberships))
	for i := range memberships {
		items = append(items, ToResponse(&memberships[i]))
	}

	core.OK(w, ListResponse{Items: items})
}

func (h *Handler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	m, err := h.service.UpdateRoles(
		ctx,
		h.scope.Actor(ctx),
		chi.URLParam(r, "teamID"),
		chi.URLParam(r, "membershipID"),
		req.RoleIDs,
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := ToResponse(m)
	core.OK(w, noticeResponse{
		Membership: &resp,
		Notice: h.translator.MustT(ctx, ".notifications.updated",
			i18n.WithObjects(m, h.scope.Team(ctx))),
	})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := chi.URLParam(r, "teamID")
	membershipID := chi.URLParam(r, "membershipID")

	target, err := h.service.Get(ctx, teamID, membershipID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.service.Remove(ctx, h.scope.Actor(ctx), teamID, membershipID); err != nil {
		h.fail(w, r, err)
		return
	}

	core.OK(w, noticeResponse{
		Notice: h.translator.MustT(ctx, ".notifications.destroyed",
			i18n.WithObjects(target, h.scope.Team(ctx))),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrLastAdmin) {
		core.JSONError(w, core.NewAppError(
			err,
			h.translator.MustT(r.Context(), ".errors.last_admin"),
			http.StatusConflict,
			"LAST_ADMIN",
		))
		return
	}
	core.Fail(w, err, "membership")
}
