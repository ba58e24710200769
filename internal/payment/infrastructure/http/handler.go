package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/payment/application"
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
		tracer:  otel.Tracer("payment-http"),
	}
}

type createPaymentReq struct {
	OrderID       int64  `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.processPayment)
		r.Get("/", h.listPayments)
		r.Get("/order/{orderId}", h.getByOrder)
		r.Get("/{id}", h.getPayment)
		r.Patch("/{id}/cancel", h.cancelPayment)
		r.Patch("/{id}/refund", h.refundPayment)
		r.Delete("/{id}", h.deletePayment)
	})
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProcessPayment")
	defer span.End()

	var req createPaymentReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	if req.OrderID <= 0 {
		httpx.BadRequest(w, r, "orderId is required")
		return
	}
	id, err := h.service.ProcessPayment(ctx, req.OrderID, req.PaymentMethod)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writePayment(w, r, http.StatusCreated, id)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.query.ListPayments(r.Context())
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) getByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httpx.IDParam(r, "orderId")
	if !ok {
		httpx.BadRequest(w, r, "invalid order id")
		return
	}
	v, err := h.query.GetPaymentByOrder(r.Context(), orderID)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid payment id")
		return
	}
	h.writePayment(w, r, http.StatusOK, id)
}

func (h *Handler) cancelPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelPayment")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid payment id")
		return
	}
	if err := h.service.CancelPayment(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writePayment(w, r, http.StatusOK, id)
}

func (h *Handler) refundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RefundPayment")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid payment id")
		return
	}
	amount, err := decimal.NewFromString(r.URL.Query().Get("refundAmount"))
	if err != nil {
		httpx.BadRequest(w, r, "refundAmount must be a decimal number")
		return
	}
	if err := h.service.RefundPayment(ctx, id, amount); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	h.writePayment(w, r, http.StatusOK, id)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeletePayment")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid payment id")
		return
	}
	if err := h.service.DeletePayment(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writePayment(w http.ResponseWriter, r *http.Request, status int, id int64) {
	v, err := h.query.GetPayment(r.Context(), id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, status, v)
}
