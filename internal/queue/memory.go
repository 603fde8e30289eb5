package queue

import (
	"context"
	"sync"
)

// MemoryQueue is a bounded in-process queue backed by a channel. Shutdown is
// signalled on a separate done channel so Close never closes the items
// channel under a parked producer; consumers drain everything buffered
// before Close and then see ErrClosed.
type MemoryQueue struct {
	items chan []byte
	done  chan struct{}
	once  sync.Once
}

func NewMemory(size int) *MemoryQueue {
	return &MemoryQueue{
		items: make(chan []byte, size),
		done:  make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, payload []byte) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.items <- payload:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) ([]byte, error) {
	// Buffered payloads win over the shutdown signal.
	select {
	case payload := <-q.items:
		return payload, nil
	default:
	}

	select {
	case payload := <-q.items:
		return payload, nil
	case <-q.done:
		select {
		case payload := <-q.items:
			return payload, nil
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Close(ctx context.Context) error {
	q.once.Do(func() { close(q.done) })
	return nil
}
