package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "storefront-notifications"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes toasts as JSON, keyed by operation.
type KafkaNotifier struct {
	writer messageWriter
	log    *slog.Logger
}

// NewKafkaNotifier builds an async writer: WriteMessages returns immediately
// and delivery failures only show up in the completion callback.
func NewKafkaNotifier(log *slog.Logger, topic string, brokers ...string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("kafka notification delivery failed", "count", len(messages), "error", err)
			}
		},
	}
	return &KafkaNotifier{writer: w, log: log}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		k.log.Error("marshal notification failed", "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(n.Op),
		Value: payload,
		Time:  n.CreatedAt,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.log.Error("publish notification failed", "notification_id", n.ID.String(), "error", err)
	}
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
