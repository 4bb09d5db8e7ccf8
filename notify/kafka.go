package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
	"github.com/adarshmishra-tech/monitor-trading-infra/util"
)

// ErrNotifierClosed is returned by Send after Close.
var ErrNotifierClosed = errors.New("notifier is closed")

// messageWriter is the subset of *kafka.Writer used by KafkaNotifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMessage is the JSON value published for each notification.
type KafkaMessage struct {
	ID         string    `json:"id"`
	Host       string    `json:"host"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	SentAt     time.Time `json:"sent_at"`
}

// KafkaNotifier publishes notifications to a topic so other systems can
// consume them alongside the mail delivery.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
	host   string
	closed atomic.Bool
}

// NewKafkaNotifier creates a notifier writing synchronously to topic.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newKafkaNotifier(w, topic), nil
}

func newKafkaNotifier(w messageWriter, topic string) *KafkaNotifier {
	host, _ := os.Hostname()
	return &KafkaNotifier{writer: w, topic: topic, host: host}
}

// Send implements Notifier.
func (k *KafkaNotifier) Send(ctx context.Context, subject, body string, recipients []string) error {
	if k.closed.Load() {
		return &types.DeliveryError{Subject: subject, Err: ErrNotifierClosed}
	}

	m := KafkaMessage{
		ID:         util.GenerateUUID(),
		Host:       k.host,
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
		SentAt:     time.Now().UTC(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return &types.DeliveryError{Subject: subject, Err: fmt.Errorf("serialize: %w", err)}
	}

	msg := kafka.Message{
		Key:   []byte(subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(m.ID)},
			{Key: "host", Value: []byte(m.Host)},
		},
		Time: m.SentAt,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return &types.DeliveryError{Subject: subject, Err: fmt.Errorf("publish to %s: %w", k.topic, err)}
	}

	log := logger.WithComponent("kafka_notifier")
	log.Debug().
		Str("topic", k.topic).
		Str("message_id", m.ID).
		Msg("notification published")
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaNotifier) Close() error {
	if k.closed.Swap(true) {
		return nil
	}
	return k.writer.Close()
}
