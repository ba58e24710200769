package outbox

import (
	"context"
	"strconv"

	"github.com/dmehra2102/ordersystem/pkg/tracing"
)

// Recorder appends events to the outbox table. Implementations join the
// transaction carried by ctx so the event commits with the state change.
type Recorder interface {
	Append(ctx context.Context, ev Event) error
}

// Record stamps the event with the traceparent of the span in ctx.
func Record(ctx context.Context, r Recorder, aggregateType string, aggregateID int64, eventType string, payload any) error {
	ev, err := NewEvent(aggregateType, strconv.FormatInt(aggregateID, 10), eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	return r.Append(ctx, ev)
}
