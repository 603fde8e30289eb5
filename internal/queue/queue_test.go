package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hostsync/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemory(8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, []byte(fmt.Sprintf("payload-%d", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	for i := 0; i < 5; i++ {
		payload, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if want := fmt.Sprintf("payload-%d", i); string(payload) != want {
			t.Fatalf("expected %s, got %s", want, payload)
		}
	}
}

func TestMemoryQueueDrainsBeforeClose(t *testing.T) {
	q := NewMemory(8)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("buffered")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	// The buffered payload comes out before the close signal.
	payload, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if string(payload) != "buffered" {
		t.Fatalf("unexpected payload: %s", payload)
	}

	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	if err := q.Enqueue(ctx, []byte("late")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on enqueue after close, got %v", err)
	}
}

func TestMemoryQueueCloseReleasesBlockedProducer(t *testing.T) {
	q := NewMemory(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("first")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// Park a producer on the full buffer, then close underneath it.
	result := make(chan error, 1)
	go func() {
		result <- q.Enqueue(ctx, []byte("second"))
	}()
	time.Sleep(50 * time.Millisecond)

	if err := q.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed for blocked producer, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("blocked producer was not released by Close")
	}

	// The payload buffered before close still drains.
	payload, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if string(payload) != "first" {
		t.Fatalf("unexpected payload: %s", payload)
	}
	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryQueueDequeueRespectsContext(t *testing.T) {
	q := NewMemory(1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func newMiniredisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:queue")
}

func TestRedisQueueFIFO(t *testing.T) {
	q := newMiniredisQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, []byte(fmt.Sprintf("payload-%d", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		payload, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if want := fmt.Sprintf("payload-%d", i); string(payload) != want {
			t.Fatalf("expected %s, got %s", want, payload)
		}
	}
}

func TestRedisQueueClose(t *testing.T) {
	q := newMiniredisQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("buffered")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	payload, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if string(payload) != "buffered" {
		t.Fatalf("unexpected payload: %s", payload)
	}

	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if _, err := NewRedisClient(context.Background(), config.RedisConfig{Address: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected connection error")
	}
}
