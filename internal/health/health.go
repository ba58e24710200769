// Package health reports liveness and store readiness over HTTP and the
// standard gRPC health protocol.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmehra2102/ordersystem/pkg/httpx"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	log     *slog.Logger
	store   Pinger
	timeout time.Duration
}

func NewChecker(log *slog.Logger, store Pinger) *Checker {
	return &Checker{log: log, store: store, timeout: 2 * time.Second}
}

func (c *Checker) Routes(r chi.Router) {
	r.Get("/healthz", c.live)
	r.Get("/readyz", c.ready)
}

func (c *Checker) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.store.Ping(ctx)
}

func (c *Checker) live(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Checker) ready(w http.ResponseWriter, r *http.Request) {
	if err := c.Ready(r.Context()); err != nil {
		c.log.Warn("readiness check failed", "err", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Watch keeps the gRPC health status in step with the store until ctx ends,
// then reports NOT_SERVING.
func (c *Checker) Watch(ctx context.Context, srv *health.Server, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	c.update(ctx, srv)
	for {
		select {
		case <-ctx.Done():
			srv.Shutdown()
			return
		case <-t.C:
			c.update(ctx, srv)
		}
	}
}

func (c *Checker) update(ctx context.Context, srv *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := c.Ready(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	srv.SetServingStatus("", status)
}
