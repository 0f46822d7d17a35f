// Package kafka publishes rendered flood-risk snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/P4za/alagAlert/internal/config"
	"github.com/P4za/alagAlert/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces snapshot messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes snapshots in a single WriteMessages
// call. Messages are keyed by snapshot key so every version of a map lands on
// the same partition.
func (w *Writer) LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snapshots))
	for i := range snapshots {
		msg, err := serializeToMessage(snapshots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d snapshots: %w", len(msgs), err)
	}
	w.logger.Debug("snapshots written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(s domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot %s: %w", s.Key, err)
	}
	return kafkago.Message{
		Key:   []byte(s.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(s.Kind)},
			{Key: "generated_at", Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
			{Key: "feature_count", Value: []byte(strconv.Itoa(len(s.Collection.Features)))},
		},
	}, nil
}
