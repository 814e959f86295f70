package queue

import (
	"context"
	"fmt"
	"sync"
)

// memoryBuffer is the per-subject channel capacity
const memoryBuffer = 64

// MemoryQueue implements Queue with in-process channels. It serves a single
// instance, which then only ever sees its own events.
type MemoryQueue struct {
	channels      map[string]chan []byte
	subscriptions map[string]context.CancelFunc
	mu            sync.Mutex
	wg            sync.WaitGroup
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		channels:      make(map[string]chan []byte),
		subscriptions: make(map[string]context.CancelFunc),
	}
}

// channel returns the subject's channel, creating it on first use.
// Callers hold q.mu.
func (q *MemoryQueue) channel(subject string) chan []byte {
	ch, exists := q.channels[subject]
	if !exists {
		ch = make(chan []byte, memoryBuffer)
		q.channels[subject] = ch
	}
	return ch
}

// Publish publishes a copy of data. It fails instead of blocking when the
// subject's buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	ch := q.channel(subject)
	q.mu.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case ch <- dataCopy:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// Subscribe consumes the subject's channel in a background goroutine
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ch := q.channel(subject)
	ctx, cancel := context.WithCancel(context.Background())
	q.subscriptions[subject] = cancel

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				// no redelivery in memory; a failed message is dropped
				_ = handler(data)
			}
		}
	}()

	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close stops all subscriptions and waits for their goroutines
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.channels = make(map[string]chan []byte)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Pending returns the number of undelivered messages for a subject
func (q *MemoryQueue) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, exists := q.channels[subject]; exists {
		return len(ch)
	}
	return 0
}
