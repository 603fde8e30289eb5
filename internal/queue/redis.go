package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hostsync/internal/config"

	"github.com/redis/go-redis/v9"
)

// closeMarker is pushed in-band on Close so consumers drain everything
// enqueued before shutdown, mirroring the channel-close semantics of
// MemoryQueue.
const closeMarker = "\x00hostsync:close\x00"

// RedisQueue is a FIFO queue on a Redis list: LPUSH to enqueue, BRPOP to
// dequeue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisClient builds a Redis client from config and verifies
// connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, payload []byte) error {
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Dequeue blocks until a payload arrives or ctx is cancelled. Short BRPOP
// timeouts keep the call responsive to cancellation.
func (q *RedisQueue) Dequeue(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		payload := result[1]
		if payload == closeMarker {
			return nil, ErrClosed
		}
		return []byte(payload), nil
	}
}

func (q *RedisQueue) Close(ctx context.Context) error {
	return q.client.LPush(ctx, q.key, closeMarker).Err()
}
