// Package queue provides the FIFO buffers between the HTTP intake and the
// workers. Two backends exist: an in-process channel queue and a Redis list
// queue for deployments where intake and workers must survive restarts.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by Dequeue once the queue has been closed and
// drained. Workers treat it as the shutdown signal.
var ErrClosed = errors.New("queue closed")

// Queue is a FIFO byte-payload queue. Enqueue never reorders: payloads come
// out of Dequeue in the order they went in.
type Queue interface {
	Enqueue(ctx context.Context, payload []byte) error
	Dequeue(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}
