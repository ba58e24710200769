package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/order/application"
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
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	MemberID int64          `json:"memberId"`
	Items    []orderItemReq `json:"orderItems"`
}

type orderItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/member/{memberId}", h.listMemberOrders)
		r.Get("/{id}", h.getOrder)
		r.Patch("/{id}/status", h.updateStatus)
		r.Patch("/{id}/cancel", h.cancelOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	if req.MemberID <= 0 {
		httpx.BadRequest(w, r, "memberId is required")
		return
	}
	in := application.CreateOrderInput{MemberID: req.MemberID}
	for _, it := range req.Items {
		in.Lines = append(in.Lines, application.OrderLine(it))
	}

	id, err := h.service.CreateOrder(ctx, in)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writeOrder(w, r, http.StatusCreated, id)
}

// listOrders filters by the optional memberId query parameter.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var memberID int64
	if raw := r.URL.Query().Get("memberId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.BadRequest(w, r, "invalid memberId")
			return
		}
		memberID = id
	}
	h.writeList(w, r, memberID)
}

func (h *Handler) listMemberOrders(w http.ResponseWriter, r *http.Request) {
	memberID, ok := httpx.IDParam(r, "memberId")
	if !ok {
		httpx.BadRequest(w, r, "invalid memberId")
		return
	}
	h.writeList(w, r, memberID)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid order id")
		return
	}
	h.writeOrder(w, r, http.StatusOK, id)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid order id")
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		httpx.BadRequest(w, r, "status is required")
		return
	}
	if err := h.service.UpdateOrderStatus(ctx, id, status); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, id)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid order id")
		return
	}
	if err := h.service.CancelOrder(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, id)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid order id")
		return
	}
	if err := h.service.DeleteOrder(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, status int, id int64) {
	v, err := h.query.GetOrder(r.Context(), id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, status, v)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, memberID int64) {
	orders, err := h.query.ListOrders(r.Context(), memberID)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}
