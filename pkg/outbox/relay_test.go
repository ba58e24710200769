package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/pkg/logging"
	"github.com/dmehra2102/ordersystem/pkg/tracing"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  map[int64]string
}

func (s *fakeStore) LockBatch(_ context.Context, _ string, batchSize int, _ time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(batchSize, len(s.pending))
	batch := s.pending[:n]
	s.pending = s.pending[n:]
	return batch, nil
}

func (s *fakeStore) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

func (s *fakeStore) ExtendLease(context.Context, string, []int64, time.Duration) error { return nil }

type fakeProducer struct {
	msgs    []kafka.Message
	failKey string
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failKey {
			return errors.New("broker unavailable")
		}
		p.msgs = append(p.msgs, m)
	}
	return nil
}

func TestRelayFlushDispatchesAndMarks(t *testing.T) {
	ev1, err := NewEvent("order", "1", "OrderCreated", map[string]int{"order_id": 1}, "00-abc-def-01")
	require.NoError(t, err)
	ev1.ID = 1
	ev2, err := NewEvent("payment", "9", "PaymentCompleted", map[string]int{"payment_id": 9}, "")
	require.NoError(t, err)
	ev2.ID = 2

	store := &fakeStore{pending: []Event{ev1, ev2}}
	producer := &fakeProducer{failKey: "payment:9"}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), producer, "order.events"), "test-relay")

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, store.sent)
	assert.Contains(t, store.failed, int64(2))

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "order.events", msg.Topic)
	assert.Equal(t, "order:1", string(msg.Key))
	assert.JSONEq(t, `{"order_id":1}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OrderCreated", headers["event_type"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])
	assert.Equal(t, "order-service", headers["source"])
}

func TestDispatchInjectsSpanWhenNoTraceparentStored(t *testing.T) {
	ctx := context.Background()
	tp, err := tracing.Init(ctx, "outbox-test", "", logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	ev, err := NewEvent("order", "4", "OrderDeleted", map[string]int{"order_id": 4}, "")
	require.NoError(t, err)
	producer := &fakeProducer{}
	require.NoError(t, NewDispatcher(logging.Discard(), producer, "order.events").Dispatch(ctx, ev))

	require.Len(t, producer.msgs, 1)
	var traceparents []string
	for _, h := range producer.msgs[0].Headers {
		if h.Key == tracing.TraceparentHeader {
			traceparents = append(traceparents, string(h.Value))
		}
	}
	require.Len(t, traceparents, 1)
	assert.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-0[01]$`, traceparents[0])

	remote := trace.SpanContextFromContext(tracing.ExtractKafkaHeaders(ctx, producer.msgs[0].Headers))
	assert.True(t, remote.IsValid())
}

func TestRelayFlushEmpty(t *testing.T) {
	relay := NewRelay(logging.Discard(), &fakeStore{}, NewDispatcher(logging.Discard(), &fakeProducer{}, "t"), "r")
	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
