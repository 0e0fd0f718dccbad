package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/health-surveillance-service/internal/config"
	"github.com/couchcryptid/health-surveillance-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes analyses to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadAnalysis serializes and publishes one analysis to the sink topic.
func (w *Writer) LoadAnalysis(ctx context.Context, analysis domain.Analysis) error {
	msg, err := serializeToMessage(analysis)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write analysis %s: %w", analysis.ID, err)
	}
	w.logger.Debug("analysis written", "analysis_id", analysis.ID, "bytes", len(msg.Value))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Analysis into a Kafka message keyed by its id.
func serializeToMessage(analysis domain.Analysis) (kafkago.Message, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(analysis.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "overall_risk", Value: []byte(analysis.OverallRisk)},
			{Key: "analyzed_at", Value: []byte(analysis.AnalyzedAt.Format(time.RFC3339))},
			{Key: "total_reports", Value: []byte(strconv.Itoa(analysis.TotalReports))},
		},
	}, nil
}
