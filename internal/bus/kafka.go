package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// KafkaConfig holds connection settings shared by publishers and subscribers.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	GroupID    string
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// KafkaPublisher publishes payloads to a single Kafka topic. It is safe for
// concurrent use.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the configured topic.
func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish sends one payload and waits for broker acknowledgment.
func (p *KafkaPublisher) Publish(ctx context.Context, payload []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return apperrors.Wrap(apperrors.ErrTransient, err.Error())
	}
	return nil
}

// Close flushes pending messages and releases the underlying connections.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaSubscriber consumes a topic as part of a consumer group. Offsets are
// committed only after the handler succeeds, so a crash between processing
// and commit causes redelivery.
type KafkaSubscriber struct {
	cfg    KafkaConfig
	reader *kafka.Reader
	logger *slog.Logger
}

// NewKafkaSubscriber creates a group subscriber for the configured topic.
func NewKafkaSubscriber(cfg KafkaConfig, logger *slog.Logger) *KafkaSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	return &KafkaSubscriber{cfg: cfg, reader: reader, logger: logger}
}

// Run fetches and processes messages until ctx is canceled. Fetch failures
// and handler failures are retried with capped exponential backoff; the loop
// never stops silently.
func (s *KafkaSubscriber) Run(ctx context.Context, handler Handler) error {
	backoff := s.cfg.MinBackoff

	for {
		message, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				// Reader was closed.
				return ErrClosed
			}

			s.logger.Error("failed to fetch message, reconnecting",
				slog.String("topic", s.cfg.Topic),
				slog.String("error", err.Error()),
			)
			if !s.sleep(ctx, backoff) {
				return nil
			}
			backoff = s.nextBackoff(backoff)
			continue
		}
		backoff = s.cfg.MinBackoff

		if !s.process(ctx, handler, message.Value) {
			return nil
		}

		if err := s.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("failed to commit offset",
				slog.String("topic", s.cfg.Topic),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process retries the handler on the same message until it succeeds or ctx
// is canceled. It returns false when the context was canceled.
func (s *KafkaSubscriber) process(ctx context.Context, handler Handler, payload []byte) bool {
	backoff := s.cfg.MinBackoff

	for {
		err := handler(ctx, payload)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		s.logger.Error("handler failed, retrying message",
			slog.String("topic", s.cfg.Topic),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)
		if !s.sleep(ctx, backoff) {
			return false
		}
		backoff = s.nextBackoff(backoff)
	}
}

func (s *KafkaSubscriber) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > s.cfg.MaxBackoff {
		next = s.cfg.MaxBackoff
	}
	return next
}

// sleep waits for the given duration and reports false if ctx was canceled.
func (s *KafkaSubscriber) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close stops the underlying reader. A running Run loop returns ErrClosed.
func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}
