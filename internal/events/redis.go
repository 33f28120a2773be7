package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2/log"
)

// NewRedisClient connects to addr and verifies the connection with a ping.
func NewRedisClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infof("Connected to Redis at %s", addr)
	return client, nil
}

// RedisPublisher publishes encoded events on a pub/sub channel so every API
// instance can relay them to its own websocket clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := evt.Encode()
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, msg).Err()
}

// RedisRelay forwards messages from the channel to a local sink.
type RedisRelay struct {
	client  *redis.Client
	channel string
	sink    Sink
}

func NewRedisRelay(client *redis.Client, channel string, sink Sink) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, sink: sink}
}

// Start subscribes and returns once the subscription is confirmed. Messages
// are forwarded until ctx is cancelled.
func (r *RedisRelay) Start(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := r.sink.Send(ctx, []byte(msg.Payload)); err != nil {
					log.Warnf("relay %s: %v", r.channel, err)
				}
			}
		}
	}()
	return nil
}
