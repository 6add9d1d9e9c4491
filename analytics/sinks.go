package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ncobase/unicourse/logging/logger"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// LogSink writes page views to the structured logger.
type LogSink struct {
	Logger *logger.Logger
}

// Name returns the sink name.
func (LogSink) Name() string { return "log" }

// Send logs pv at info level.
func (s LogSink) Send(ctx context.Context, pv PageView) error {
	l := s.Logger
	if l == nil {
		l = logger.StdLogger()
	}
	l.Entry(ctx).WithFields(pv.Event()).Info(EventName)
	return nil
}

// RedisStreamSink appends page views to a Redis stream.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStreamSink creates a sink writing to stream, trimmed
// approximately to maxLen entries when maxLen > 0.
func NewRedisStreamSink(client redis.Cmdable, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

// Name returns the sink name.
func (*RedisStreamSink) Name() string { return "redis" }

// Send adds pv to the stream.
func (s *RedisStreamSink) Send(ctx context.Context, pv PageView) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(pv),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func streamValues(pv PageView) map[string]any {
	return map[string]any{
		"event":      EventName,
		"list_id":    pv.ListID,
		"list_name":  pv.ListName,
		"page":       pv.Page,
		"item_ids":   strings.Join(pv.ItemIDs(), ","),
		"item_count": len(pv.Items),
	}
}

// MessageWriter is the part of *kafka.Writer the Kafka sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes page views as JSON messages keyed by list ID.
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaWriter builds the writer used by the Kafka sink.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaSink creates a sink over w.
func NewKafkaSink(w MessageWriter) *KafkaSink {
	return &KafkaSink{writer: w}
}

// Name returns the sink name.
func (*KafkaSink) Name() string { return "kafka" }

// Send publishes pv.
func (s *KafkaSink) Send(ctx context.Context, pv PageView) error {
	value, err := json.Marshal(pv.Event())
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(pv.ListID),
		Value: value,
	})
}

// Close closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
