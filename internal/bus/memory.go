package bus

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// MemoryBus is an in-process broker used by tests and single-binary
// development runs. It preserves the at-least-once contract: a message is
// removed from the queue only after a handler acknowledges it.
type MemoryBus struct {
	mu     sync.Mutex
	queue  [][]byte
	notify chan struct{}
	closed bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{notify: make(chan struct{}, 1)}
}

// Publish enqueues one payload.
func (b *MemoryBus) Publish(ctx context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return apperrors.Wrap(apperrors.ErrTransient, "memory bus closed")
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	b.queue = append(b.queue, buf)

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// Run delivers queued payloads to handler until ctx is canceled. A failed
// handler call leaves the message at the head of the queue and it is
// redelivered after a short pause.
func (b *MemoryBus) Run(ctx context.Context, handler Handler) error {
	for {
		payload, ok := b.peek()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-b.notify:
				continue
			}
		}

		if err := handler(ctx, payload); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			timer := time.NewTimer(time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}

		b.pop()
	}
}

func (b *MemoryBus) peek() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return nil, false
	}
	return b.queue[0], true
}

func (b *MemoryBus) pop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) > 0 {
		b.queue = b.queue[1:]
	}
}

// Len reports the number of unacknowledged messages.
func (b *MemoryBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close rejects further publishes. Queued messages remain deliverable.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Interface checks.
var (
	_ Publisher  = (*MemoryBus)(nil)
	_ Subscriber = (*MemoryBus)(nil)
	_ Publisher  = (*KafkaPublisher)(nil)
	_ Subscriber = (*KafkaSubscriber)(nil)
)
