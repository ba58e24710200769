package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/product/application"
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
		tracer:  otel.Tracer("product-http"),
	}
}

// Price accepts a JSON number or a numeric string.
type createProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type updateProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	id, err := h.service.CreateProduct(ctx, application.CreateProductInput(req))
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	v, err := h.query.GetProduct(ctx, id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.ListProducts(r.Context())
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid product id")
		return
	}
	v, err := h.query.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid product id")
		return
	}
	var req updateProductReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, r, "invalid body")
		return
	}
	if err := h.service.UpdateProduct(ctx, id, application.UpdateProductInput(req)); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	v, err := h.query.GetProduct(ctx, id)
	if err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.BadRequest(w, r, "invalid product id")
		return
	}
	if err := h.service.DeleteProduct(ctx, id); err != nil {
		httpx.Error(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
