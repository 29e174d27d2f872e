package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ice-breakun/backend/pkg/logger"
	"ice-breakun/backend/pkg/resilience"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope is the wire format on the Redis channel
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBridge relays events between instances over a Redis pub/sub channel.
// Events published locally go out to Redis; events from other instances are
// re-published on the local bus. An instance ignores its own messages.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	local   Publisher
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

// NewRedisBridge wires client to the local publisher, usually the Bus
func NewRedisBridge(client *redis.Client, channel string, local Publisher, log *logger.Logger) *RedisBridge {
	if log == nil {
		log = logger.GetGlobal()
	}
	log = log.WithComponent("events.redis")
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultConfig("redis-events"), log),
		log:     log,
	}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Origin identifies this instance on the channel
func (r *RedisBridge) Origin() string { return r.origin }

// Breaker exposes the circuit breaker guarding publishes
func (r *RedisBridge) Breaker() *resilience.CircuitBreaker { return r.breaker }

// Publish sends e to the other instances. Failures are logged and swallowed.
func (r *RedisBridge) Publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(envelope{Origin: r.origin, Event: e})
	if err != nil {
		r.log.LogError(err, "Failed to encode event", "type", e.Type)
		return
	}

	err = r.breaker.Execute(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return r.client.Publish(ctx, r.channel, payload).Err()
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		r.log.Debug("Skipped event publish, circuit open", "type", e.Type)
		return
	}
	if err != nil {
		r.log.LogError(err, "Failed to publish event", "type", e.Type, "channel", r.channel)
	}
}

// Run relays remote events to the local publisher until ctx is done
func (r *RedisBridge) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed so nothing published after Run returns is missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.log.Info("Event bridge subscribed", "channel", r.channel, "origin", r.origin)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.relay(ctx, msg.Payload)
		}
	}
}

func (r *RedisBridge) relay(ctx context.Context, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.log.Warn("Ignoring malformed event", "error", err.Error())
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.local.Publish(ctx, env.Event)
}

// Ping checks that Redis is reachable
func (r *RedisBridge) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
