package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/model"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes one message per alert, keyed by satellite and
// component so a group always lands on the same partition.
type KafkaSender struct {
	log    *slog.Logger
	writer MessageWriter
}

func NewKafkaSender(log *slog.Logger, cfg config.KafkaConfig) *KafkaSender {
	return NewKafkaSenderWithWriter(log, &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	})
}

func NewKafkaSenderWithWriter(log *slog.Logger, w MessageWriter) *KafkaSender {
	return &KafkaSender{
		log:    log.With(slog.String("component", "kafka")),
		writer: w,
	}
}

func (s *KafkaSender) Send(ctx context.Context, report *model.AlertReport) error {
	msgs, err := BuildMessages(report)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write kafka messages: %w", err)
	}

	s.log.Debug("alerts published", slog.Int("count", len(msgs)))
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

func BuildMessages(report *model.AlertReport) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(report.Alerts))
	for _, a := range report.Alerts {
		value, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alert: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.Itoa(a.SatelliteID) + "/" + a.Component),
			Value: value,
			Time:  a.Timestamp,
			Headers: []kafka.Header{
				{Key: "report-id", Value: []byte(report.ID)},
				{Key: "run-id", Value: []byte(report.RunID)},
			},
		})
	}
	return msgs, nil
}
