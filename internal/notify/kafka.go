package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaNotifier publishes notifications to a Kafka topic consumed by the
// delivery workers (push, SMS, in-app feed). Production is asynchronous: the
// record is handed to the client's buffer and the delivery callback only
// logs, so a slow broker never blocks a request.
type KafkaNotifier struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaNotifier connects to the given seed brokers.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) (*KafkaNotifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaNotifier{client: client, topic: topic, logger: logger}, nil
}

// Notify publishes the message keyed by user id so a user's notifications
// stay ordered within a partition.
func (k *KafkaNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(msg.UserID.String()),
		Value: payload,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.Warn("notification publish failed",
				"user_id", msg.UserID.String(),
				"category", msg.Category,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and releases the client.
func (k *KafkaNotifier) Close(ctx context.Context) error {
	if err := k.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush kafka client: %w", err)
	}
	k.client.Close()
	return nil
}
