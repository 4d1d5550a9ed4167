// Package worker implements the bounded connection-request buffer, the
// worker pool that runs one game session per worker, the intake loop that
// accepts CONNECT requests with backpressure, and the SIGUSR1 diagnostic
// dump — spec.md §4.7 and §4.8.
package worker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// MaxBufferSize is the request buffer's fixed capacity (spec.md §3).
const MaxBufferSize = 10

// ConnectionRequest is one accepted CONNECT's pipe paths, queued for a
// worker to pick up.
type ConnectionRequest struct {
	ReqPipePath   string
	NotifPipePath string
}

// RequestBuffer is the bounded FIFO producer/consumer queue between the
// intake loop and the worker pool. Two counting semaphores stand in for
// the original's sem_empty/sem_full: acquiring sEmpty is how the
// producer blocks when the buffer is full (the spec's only backpressure
// mechanism), and sFull is how a worker blocks when the buffer is empty.
type RequestBuffer struct {
	mu    sync.Mutex
	items [MaxBufferSize]ConnectionRequest
	in    int
	out   int

	sEmpty *semaphore.Weighted // slots available to write into
	sFull  *semaphore.Weighted // slots available to read from
}

// NewRequestBuffer constructs an empty buffer at full capacity: sEmpty
// starts with all MaxBufferSize slots available (matching
// sem_init(&sem_empty, 0, MAX_BUFFER_SIZE)), sFull starts with none
// (matching sem_init(&sem_full, 0, 0)) by immediately acquiring its own
// full capacity so the first Pop genuinely blocks until a push.
func NewRequestBuffer() *RequestBuffer {
	b := &RequestBuffer{
		sEmpty: semaphore.NewWeighted(MaxBufferSize),
		sFull:  semaphore.NewWeighted(MaxBufferSize),
	}
	_ = b.sFull.Acquire(context.Background(), MaxBufferSize)
	return b
}

// Push enqueues req, blocking (backpressure) if the buffer is full.
// ctx cancellation (e.g. on shutdown) unblocks a pending push.
func (b *RequestBuffer) Push(ctx context.Context, req ConnectionRequest) error {
	if err := b.sEmpty.Acquire(ctx, 1); err != nil {
		return err
	}
	b.mu.Lock()
	b.items[b.in] = req
	b.in = (b.in + 1) % MaxBufferSize
	b.mu.Unlock()
	b.sFull.Release(1)
	return nil
}

// Pop dequeues the next request, blocking until one is available or ctx
// is cancelled.
func (b *RequestBuffer) Pop(ctx context.Context) (ConnectionRequest, error) {
	if err := b.sFull.Acquire(ctx, 1); err != nil {
		return ConnectionRequest{}, err
	}
	b.mu.Lock()
	req := b.items[b.out]
	b.out = (b.out + 1) % MaxBufferSize
	b.mu.Unlock()
	b.sEmpty.Release(1)
	return req, nil
}
