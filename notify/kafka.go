package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/segmentio/kafka-go"
	"go-token-swap"
)

// messageWriter the part of *kafka.Writer used by kafkaNotifier
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON events keyed by record id
type KafkaNotifier struct {
	writer messageWriter
	logger log.Logger
}

// NewKafkaNotifier returns a notifier writing asynchronously to topic.
// Delivery errors are logged, never returned.
func NewKafkaNotifier(brokers []string, topic string, logger log.Logger) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				level.Error(logger).Log("msg", "publishing swap events failed", "count", len(messages), "err", err)
			}
		},
	}
	return &KafkaNotifier{writer: w, logger: logger}
}

// event the published message body
type event struct {
	Status      swap.Status `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Record      swap.Record `json:"record"`
}

func (k *KafkaNotifier) Notify(ctx context.Context, note swap.Notification) {
	value, err := json.Marshal(event(note))
	if err != nil {
		level.Error(k.logger).Log("msg", "encoding swap event", "err", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(note.Record.ID),
		Value: value,
		Time:  time.Now(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		level.Error(k.logger).Log("msg", "publishing swap event", "id", note.Record.ID, "err", err)
	}
}

// Close flushes pending messages and closes the writer
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
