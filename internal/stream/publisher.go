package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes new state values to the topic as JSON.
type Publisher struct {
	w MessageWriter
}

func NewPublisher(w MessageWriter) *Publisher { return &Publisher{w: w} }

func NewKafkaPublisher(brokers []string, topic string) *Publisher {
	return NewPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func (p *Publisher) Publish(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Value: b}); err != nil {
		return &ConnectionError{Op: "publish", Err: err}
	}
	return nil
}

func (p *Publisher) Close() error { return p.w.Close() }
