//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	orderkafka "github.com/dmehra2102/ordersystem/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/ordersystem/internal/store/memory"
	"github.com/dmehra2102/ordersystem/internal/testutil"
	"github.com/dmehra2102/ordersystem/pkg/logging"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

func TestRelayPublishesRecordedEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	brokers := testutil.Kafka(t)
	const topic = "order.events.it"

	store := memory.New()
	require.NoError(t, outbox.Record(ctx, store.Outbox(), orderdomain.AggregateType, 11,
		orderdomain.EventOrderCancelled, orderdomain.OrderCancelled{OrderID: 11}))

	// Dialing the partition leader creates the topic before the first write.
	conn, err := kafka.DialLeader(ctx, "tcp", brokers[0], topic, 0)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	writer := orderkafka.NewWriter(brokers)
	defer writer.Close()

	log := logging.Discard()
	relay := outbox.NewRelay(log, store.Outbox(), outbox.NewDispatcher(log, writer, topic), "it-relay")

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, Partition: 0})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order:11", string(msg.Key))
	assert.JSONEq(t, `{"order_id":11}`, string(msg.Value))

	events := store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, outbox.StatusSent, events[0].Status)
}
