package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/member/application"
	"github.com/dmehra2102/ordersystem/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	query   *application.Query
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, query *application.Query) *Handler {
	return &Handler{
		log:     log,
		service: service,
		query:   query,
		tracer:  otel.Tracer("member-http"),
	}
}

type createMemberReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateMemberReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/members", func(r chi.Router) {
		r.Post("/", h.createMember)
		r.Get("/", h.listMembers)
		r.Get("/{id}", h.getMember)
		r.Put("/{id}", h.updateMember)
		r.Delete("/{id}", h.deleteMember)
	})
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateMember")
	defer span.End()

	var req createMemberReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	id, err := h.service.CreateMember(ctx, application.CreateMemberInput(req))
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	v, err := h.query.GetMember(ctx, id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.query.ListMembers(r.Context())
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid member id")
		return
	}
	v, err := h.query.GetMember(r.Context(), id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateMember")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid member id")
		return
	}
	var req updateMemberReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	if err := h.service.UpdateMember(ctx, id, application.UpdateMemberInput(req)); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	v, err := h.query.GetMember(ctx, id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteMember")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid member id")
		return
	}
	if err := h.service.DeleteMember(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
