package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/ordersystem/pkg/apperr"
	"github.com/dmehra2102/ordersystem/pkg/logging"
)

// fakeReader closes drained once every message has been fetched.
type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	closed    bool
	drained   chan struct{}
	once      sync.Once
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.once.Do(func() { close(r.drained) })
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *fakeDeduper) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%d:%d", topic, partition, offset)
}

func (d *fakeDeduper) Seen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return true, nil
	}
	d.seen[key] = true
	return false, nil
}

func (d *fakeDeduper) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

type updateFunc func(ctx context.Context, id int64, status string) error

func (f updateFunc) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	return f(ctx, id, status)
}

func message(offset int64, value string) kafka.Message {
	return kafka.Message{Topic: "shipment.events", Offset: offset, Value: []byte(value)}
}

func TestConsumerAppliesShipmentUpdates(t *testing.T) {
	reader := &fakeReader{drained: make(chan struct{}), msgs: []kafka.Message{
		message(1, `{"order_id":7,"status":"SHIPPED"}`),
		message(2, `not json`),
		message(3, `{"order_id":8,"status":"DELIVERED"}`),
		message(4, `{"order_id":9,"status":"SHIPPED"}`),
		message(5, `{"order_id":10,"status":"SHIPPED"}`),
	}}
	dedupe := &fakeDeduper{seen: map[string]bool{"shipment.events:0:4": true}}

	var applied []int64
	orders := updateFunc(func(_ context.Context, id int64, status string) error {
		switch id {
		case 8:
			return apperr.NotFound("order.UpdateStatus", nil, "order 8 not found")
		case 10:
			return errors.New("connection reset")
		}
		applied = append(applied, id)
		assert.Equal(t, "SHIPPED", status)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	c := NewConsumer(logging.Discard(), reader, orders, dedupe)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(time.Second):
		t.Fatal("consumer did not drain the topic")
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{7}, applied)
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed, "internal failures stay uncommitted")
	assert.True(t, reader.closed)
	assert.NotContains(t, dedupe.seen, "shipment.events:0:5", "failed updates can be retried")
}
