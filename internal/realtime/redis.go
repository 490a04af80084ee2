package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// channelNamespace prefixes every Redis Pub/Sub channel so multiple
// deployments can share an instance.
const channelNamespace = "pupwalk:changes:"

// RedisNotifier distributes change events across nodes via Redis Pub/Sub.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, addr, password string, db int) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisNotifier{client: client}, nil
}

func (n *RedisNotifier) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, channelNamespace+change.Collection, payload).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error) {
	ps := n.client.Subscribe(ctx, channelNamespace+collection)

	// Force the subscription to be established before returning.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, err
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("realtime: dropping malformed change payload: %v", err)
				continue
			}
			select {
			case out <- change:
			default:
				// Drop for slow consumers rather than blocking the reader.
			}
		}
	}()

	cancel := func() {
		ps.Close()
	}
	return out, cancel, nil
}

// Close releases the underlying Redis client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
