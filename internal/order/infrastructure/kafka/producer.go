package kafka

import (
	"github.com/segmentio/kafka-go"
)

// NewWriter returns the producer the outbox relay publishes order and
// payment events through.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
