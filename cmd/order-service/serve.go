package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/ordersystem/internal/health"
	orderkafka "github.com/dmehra2102/ordersystem/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/ordersystem/pkg/config"
	"github.com/dmehra2102/ordersystem/pkg/idempotency"
	"github.com/dmehra2102/ordersystem/pkg/logging"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
	"github.com/dmehra2102/ordersystem/pkg/shutdown"
	"github.com/dmehra2102/ordersystem/pkg/tracing"
)

func serveCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, the outbox relay and the shipment consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	log := logging.New(logging.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, cancel := shutdown.WithSignals(parent)
	defer cancel()

	tp, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = tp.Shutdown(flushCtx)
	}()

	b, err := openBackend(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	a := newApp(log, cfg, b)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	gs, hs := health.NewGRPCServer()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.GRPCAddr != "" {
		g.Go(func() error {
			log.Info("grpc health listening", "addr", cfg.GRPCAddr)
			return health.Serve(gs, cfg.GRPCAddr)
		})
		g.Go(func() error {
			a.checker.Watch(ctx, hs, 5*time.Second)
			return nil
		})
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		writer := orderkafka.NewWriter(brokers)
		defer writer.Close()

		relay := outbox.NewRelay(log, b.outbox, outbox.NewDispatcher(log, writer, cfg.OutboxTopic), serviceName+"-relay")
		g.Go(func() error { return relay.Run(ctx) })

		if cfg.RedisAddr != "" && cfg.ShipmentTopic != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			defer rdb.Close()

			reader := orderkafka.NewReader(brokers, cfg.ShipmentTopic, cfg.ConsumerGroup)
			consumer := orderkafka.NewConsumer(log, reader, a.orders, idempotency.NewStore(rdb, cfg.IdempotencyTTL))
			g.Go(func() error { return consumer.Run(ctx) })
		}
	}

	g.Go(func() error {
		<-ctx.Done()
		stop(log, srv, gs)
		return nil
	})

	err = g.Wait()
	log.Info("order-service shutdown complete")
	return err
}

func stop(log *slog.Logger, srv *http.Server, gs interface{ GracefulStop() }) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	gs.GracefulStop()
}
