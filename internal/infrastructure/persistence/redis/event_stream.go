package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/pkg/circuitbreaker"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
	"github.com/alem-hub/enrollment-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT STREAM
// ══════════════════════════════════════════════════════════════════════════════

// DefaultStreamKey is the stream that receives enrollment outcomes.
const DefaultStreamKey = "enrollment-hub:events"

// Stream entry field names.
const (
	fieldType     = "type"
	fieldEnvelope = "envelope"
)

// EventStream appends domain events to a Redis stream with XADD.
// The stream is capped approximately at MaxLen entries. While Redis is down
// the breaker drops appends instead of stalling the event bus workers.
type EventStream struct {
	client  redis.Cmdable
	key     string
	maxLen  int64
	timeout time.Duration
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// EventStreamConfig configures EventStream.
type EventStreamConfig struct {
	Key     string
	MaxLen  int64
	Timeout time.Duration
	Logger  *logger.Logger

	// Breaker guards appends. Nil uses circuitbreaker.StreamBreaker.
	Breaker *circuitbreaker.CircuitBreaker
}

// NewEventStream creates a stream publisher over an existing client.
func NewEventStream(client redis.Cmdable, cfg EventStreamConfig) *EventStream {
	if cfg.Key == "" {
		cfg.Key = DefaultStreamKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	log := cfg.Logger.With(logger.Component("event_stream"), logger.String("stream", cfg.Key))
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuitbreaker.StreamBreaker("redis-stream", func(name string, from, to circuitbreaker.State) {
			log.Warn("stream breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		})
	}

	return &EventStream{
		client:  client,
		key:     cfg.Key,
		maxLen:  cfg.MaxLen,
		timeout: cfg.Timeout,
		retrier: retry.NetworkRetrier(),
		breaker: breaker,
		log:     log,
	}
}

// Key returns the stream key.
func (s *EventStream) Key() string {
	return s.key
}

// Append writes one event and returns the stream entry ID.
func (s *EventStream) Append(ctx context.Context, event shared.Event) (string, error) {
	args, err := s.addArgs(event)
	if err != nil {
		return "", err
	}

	var entryID string
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.retrier.Do(ctx, func(ctx context.Context) error {
			id, err := s.client.XAdd(ctx, args).Result()
			if err != nil {
				return retry.Retryable(err)
			}
			entryID = id
			return nil
		})
	})
	if circuitbreaker.IsRejected(err) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("redis: xadd %s: %w", s.key, err)
	}
	return entryID, nil
}

// Handler adapts the stream to the event bus. Failures are logged: the
// originating transaction has already committed.
func (s *EventStream) Handler() shared.EventHandler {
	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		id, err := s.Append(ctx, event)
		if circuitbreaker.IsRejected(err) {
			s.log.Debug("stream unavailable, event dropped",
				logger.String("event_type", string(event.EventType())),
				logger.String("aggregate_id", event.AggregateID()),
			)
			return err
		}
		if err != nil {
			s.log.Error("failed to append event",
				logger.String("event_type", string(event.EventType())),
				logger.String("aggregate_id", event.AggregateID()),
				logger.Err(err),
			)
			return err
		}

		s.log.Debug("event appended",
			logger.String("event_type", string(event.EventType())),
			logger.String("entry_id", id),
		)
		return nil
	}
}

// Recent returns up to count newest envelopes, newest first.
func (s *EventStream) Recent(ctx context.Context, count int64) ([]shared.EventEnvelope, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.key, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: xrevrange %s: %w", s.key, err)
	}

	out := make([]shared.EventEnvelope, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[fieldEnvelope].(string)
		if !ok {
			continue
		}
		var env shared.EventEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			s.log.Warn("bad stream entry", logger.String("entry_id", m.ID), logger.Err(err))
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

func (s *EventStream) addArgs(event shared.Event) (*redis.XAddArgs, error) {
	env, err := shared.NewEventEnvelope(uuid.NewString(), event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	args := &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]interface{}{
			fieldType:     string(env.Type),
			fieldEnvelope: string(raw),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return args, nil
}

// BreakerState reports whether appends are currently attempted.
func (s *EventStream) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}

// Ping checks that the stream's server is reachable.
func (s *EventStream) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
