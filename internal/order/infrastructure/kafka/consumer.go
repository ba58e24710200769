package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/pkg/apperr"
	"github.com/dmehra2102/ordersystem/pkg/tracing"
)

// ShipmentUpdate is a carrier notification about an order's parcel.
type ShipmentUpdate struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
}

// Consumer applies shipment updates to orders.
type Consumer struct {
	log    *slog.Logger
	reader Reader
	orders StatusUpdater
	idem   Deduper
	tracer trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, orders StatusUpdater, idem Deduper) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		orders: orders,
		idem:   idem,
		tracer: otel.Tracer("shipment-consumer"),
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if c.handle(ctx, msg) {
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.log.Error("commit failed", "offset", msg.Offset, "err", err)
			}
		}
	}
}

// handle reports whether the message is finished with and may be committed.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "key", key, "err", err)
		return false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return true
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeShipmentUpdate")
	defer span.End()

	var update ShipmentUpdate
	if err := json.Unmarshal(msg.Value, &update); err != nil || update.OrderID <= 0 {
		c.log.Error("malformed shipment update", "offset", msg.Offset, "err", err)
		return true
	}
	span.SetAttributes(attribute.Int64("order_id", update.OrderID))

	err = c.orders.UpdateOrderStatus(msgCtx, update.OrderID, update.Status)
	switch {
	case err == nil:
		c.log.Info("shipment update applied", "order_id", update.OrderID, "status", update.Status)
		return true
	case apperr.KindOf(err) != apperr.KindInternal:
		c.log.Warn("shipment update rejected", "order_id", update.OrderID, "status", update.Status, "err", err)
		return true
	default:
		c.log.Error("shipment update failed", "order_id", update.OrderID, "err", err)
		if ferr := c.idem.Forget(ctx, key); ferr != nil {
			c.log.Error("idempotency forget failed", "key", key, "err", errors.Join(err, ferr))
		}
		return false
	}
}
