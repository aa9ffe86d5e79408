package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// GroupID names this process instance. Every instance gets a fresh id, so every
// restart replays from the tail of the topic.
func GroupID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// KafkaLog reads one partition of one topic. The instance id travels as the Kafka client id;
// offsets are never committed.
type KafkaLog struct {
	brokers []string
	topic   string
	dialer  *kafka.Dialer
	reader  *kafka.Reader
}

var _ Log = (*KafkaLog)(nil)

func NewKafkaLog(brokers []string, topic, groupID string) *KafkaLog {
	return &KafkaLog{
		brokers: brokers,
		topic:   topic,
		dialer: &kafka.Dialer{
			ClientID:  groupID,
			Timeout:   10 * time.Second,
			DualStack: true,
		},
	}
}

func (k *KafkaLog) Partitions(ctx context.Context) ([]int, error) {
	conn, err := k.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ps, err := conn.ReadPartitions(k.topic)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(ps))
	for _, p := range ps {
		if p.Topic == k.topic {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (k *KafkaLog) EndOffset(ctx context.Context, partition int) (int64, error) {
	var lastErr error
	for _, b := range k.brokers {
		conn, err := k.dialer.DialLeader(ctx, "tcp", b, k.topic, partition)
		if err != nil {
			lastErr = err
			continue
		}
		end, err := conn.ReadLastOffset()
		_ = conn.Close()
		return end, err
	}
	return 0, lastErr
}

func (k *KafkaLog) Seek(_ context.Context, partition int, offset int64) error {
	if k.reader != nil {
		_ = k.reader.Close()
	}
	k.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:   k.brokers,
		Topic:     k.topic,
		Partition: partition,
		Dialer:    k.dialer,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	return k.reader.SetOffset(offset)
}

func (k *KafkaLog) Fetch(ctx context.Context) (Record, error) {
	if k.reader == nil {
		return Record{}, errors.New("fetch before seek")
	}
	m, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return Record{}, err
	}
	return Record{Partition: m.Partition, Offset: m.Offset, Value: m.Value, Time: m.Time}, nil
}

func (k *KafkaLog) Close() error {
	if k.reader == nil {
		return nil
	}
	return k.reader.Close()
}

func (k *KafkaLog) dial(ctx context.Context) (*kafka.Conn, error) {
	var lastErr error
	for _, b := range k.brokers {
		conn, err := k.dialer.DialContext(ctx, "tcp", b)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no brokers configured")
	}
	return nil, lastErr
}
