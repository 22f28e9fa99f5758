// Package bus abstracts the durable event channel between services. The
// production implementation sits on Kafka; an in-memory implementation backs
// unit tests and single-process development.
//
// Delivery is at-least-once: a message is acknowledged only after its handler
// returns nil, so consumers must be idempotent.
package bus

import (
	"context"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// ErrClosed indicates an operation on a closed publisher or subscriber.
var ErrClosed = apperrors.New("bus: closed")

// Handler processes a single message payload. Returning nil acknowledges the
// message; returning an error leaves it unacknowledged and the subscriber
// retries it with backoff.
type Handler func(ctx context.Context, payload []byte) error

// Publisher sends payloads to a fixed topic.
type Publisher interface {
	// Publish sends one payload. A failure is reported as ErrTransient; the
	// payload may or may not have reached the broker.
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Subscriber delivers payloads from a fixed topic to a handler.
type Subscriber interface {
	// Run consumes messages until ctx is canceled, invoking handler for each.
	// It survives broker failures by reconnecting with capped exponential
	// backoff and returns nil only on context cancellation.
	Run(ctx context.Context, handler Handler) error
	Close() error
}
