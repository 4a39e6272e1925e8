package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// DefaultKafkaTopic is used when no topic is configured
const DefaultKafkaTopic = "settlement.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON messages keyed by emitter address, so every
// event of one component lands on the same partition in order.
type Kafka struct {
	w       messageWriter
	timeout time.Duration
}

// NewKafka creates an asynchronous writer for the given brokers
func NewKafka(brokers []string, topic string, logger *slog.Logger) *Kafka {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	// Writers are safe for concurrent use
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to deliver events", "count", len(messages), "error", err)
			}
		},
	}
	return &Kafka{w: w, timeout: 2 * time.Second}
}

func newKafkaWithWriter(w messageWriter) *Kafka {
	return &Kafka{w: w, timeout: 2 * time.Second}
}

type kafkaEvent struct {
	Type      model.EventType `json:"type"`
	Emitter   model.Address   `json:"emitter"`
	Origin    model.Address   `json:"origin"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

func (k *Kafka) Publish(ctx context.Context, evts []model.Event) error {
	if len(evts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evts))
	for _, e := range evts {
		b, err := json.Marshal(kafkaEvent{Type: e.Type, Emitter: e.Emitter, Origin: e.Origin, Timestamp: e.Timestamp, Payload: e.Payload})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Emitter.String()),
			Value: b,
			Time:  e.Timestamp,
		})
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	return k.w.WriteMessages(ctx, msgs...)
}

// Close flushes pending messages
func (k *Kafka) Close() error {
	return k.w.Close()
}
