package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/config"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
)

// Writer publishes ranked hotspots to a Kafka topic.
// It implements pipeline.Exporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured ranking topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Export publishes every hotspot in a single WriteMessages call. Messages
// are keyed by rank so a compacted topic keeps the latest ranking.
func (w *Writer) Export(ctx context.Context, hotspots []domain.Hotspot) error {
	if len(hotspots) == 0 {
		w.logger.Warn("no hotspots to publish", "topic", w.writer.Topic)
		return nil
	}
	msgs := make([]kafkago.Message, len(hotspots))
	for i := range hotspots {
		msg, err := serializeToMessage(hotspots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish hotspots: %w", err)
	}
	w.logger.Info("hotspots published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage converts a hotspot into a Kafka message with headers
// in key order.
func serializeToMessage(h domain.Hotspot) (kafkago.Message, error) {
	out, err := domain.SerializeHotspot(h)
	if err != nil {
		return kafkago.Message{}, err
	}
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}
	return kafkago.Message{Key: out.Key, Value: out.Value, Headers: headers}, nil
}
