package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/userdex/internal/logger"
)

// ReaderConfig holds consumer group settings.
type ReaderConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// MessageReader is the subset of *kafka.Reader the consumer loop uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var readBackoff = time.Second

// NewReader creates a consumer group reader for cfg.
func NewReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
	})
}

// RunConsumer reads user events until ctx is cancelled.
func RunConsumer(ctx context.Context, cfg ReaderConfig, users Users, log *zap.Logger) error {
	if len(cfg.Brokers) == 0 || len(cfg.Topics) == 0 {
		return fmt.Errorf("kafka: brokers and topics are required")
	}

	r := NewReader(cfg)
	log.Info("Kafka consumer started",
		zap.String("group_id", cfg.GroupID),
		zap.Strings("topics", cfg.Topics),
	)
	Consume(ctx, r, users, log)
	return nil
}

// Consume runs the fetch-commit-dispatch loop over r and closes it on return.
// Messages are committed explicitly before dispatch, so a failed event is not redelivered.
func Consume(ctx context.Context, r MessageReader, users Users, log *zap.Logger) {
	ctx = logger.ContextWithLogger(ctx, log)
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn("Kafka reader close failed", zap.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			log.Info("Kafka consumer stopping")
			return
		}

		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("Kafka consumer stopping")
				return
			}
			log.Error("Kafka read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(readBackoff):
			}
			continue
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			log.Warn("Kafka commit failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		msgCtx := logger.With(ctx,
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		msgLog := logger.FromContext(msgCtx)
		if err := Handle(msgCtx, msg, users, msgLog); err != nil {
			msgLog.Error("Kafka event failed", zap.Error(err))
		}
	}
}

// BrokerPinger checks that at least one broker accepts connections.
type BrokerPinger struct {
	Brokers []string
}

// Ping dials the brokers in order and returns nil on the first success.
func (p BrokerPinger) Ping(ctx context.Context) error {
	var lastErr error
	for _, b := range p.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("kafka: no brokers configured")
	}
	return fmt.Errorf("kafka: dial brokers: %w", lastErr)
}
