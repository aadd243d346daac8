// Package kafka publishes completed well results to a Kafka topic so
// downstream consumers (dashboards, plugging prioritization jobs) can react
// to new analysis runs without polling.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/wellshed/wellrisk/internal/domain"
)

// Writer produces well result messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the results topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishResultSet serializes and publishes every well result of a run in a
// single WriteMessages call. Messages are keyed by well ID so a compacted
// topic retains the latest result per well.
func (w *Writer) PublishResultSet(ctx context.Context, rs *domain.ResultSet) error {
	if len(rs.Results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rs.Results))
	for i := range rs.Results {
		msg, err := serializeToMessage(rs.Results[i], rs.Fingerprint, rs.ComputedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish result set: %w", err)
	}
	w.logger.Info("published result set", "wells", len(msgs), "fingerprint", rs.Fingerprint)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WellResult into a Kafka message.
func serializeToMessage(res domain.WellResult, fingerprint string, computedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize well result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(res.Well.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_tier", Value: []byte(res.Tier)},
			{Key: "fingerprint", Value: []byte(fingerprint)},
			{Key: "computed_at", Value: []byte(computedAt.Format(time.RFC3339))},
		},
	}, nil
}
