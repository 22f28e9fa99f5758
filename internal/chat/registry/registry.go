// Package registry tracks live websocket connections and fans messages out
// to them.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/metrics"
)

// Conn is a writable connection. Implementations must tolerate concurrent
// writes or serialize them internally.
type Conn interface {
	Write(ctx context.Context, payload []byte) error
}

// Registry holds the currently connected clients. Delivery is best effort:
// a connection whose write fails is dropped from the registry and the
// broadcast continues.
type Registry struct {
	mu        sync.Mutex
	conns     map[uuid.UUID]Conn
	logger    *slog.Logger
	wsMetrics metrics.WebsocketMetrics
}

// NewRegistry creates a new Registry
func NewRegistry(logger *slog.Logger, wsMetrics metrics.WebsocketMetrics) *Registry {
	if wsMetrics == nil {
		wsMetrics = metrics.NewNoOpWebsocketMetrics()
	}
	return &Registry{
		conns:     make(map[uuid.UUID]Conn),
		logger:    logger,
		wsMetrics: wsMetrics,
	}
}

// Register adds a connection and returns its registration id.
func (r *Registry) Register(conn Conn) uuid.UUID {
	id := uuid.Must(uuid.NewV7())

	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()

	r.wsMetrics.SessionOpened(context.Background())
	return id
}

// Unregister removes a connection. Removing an unknown id is a no-op.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	_, present := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()

	if present {
		r.wsMetrics.SessionClosed(context.Background())
	}
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast writes the payload to every registered connection. The
// connection set is snapshotted first so writes happen outside the lock.
func (r *Registry) Broadcast(ctx context.Context, payload []byte) {
	r.mu.Lock()
	targets := make(map[uuid.UUID]Conn, len(r.conns))
	for id, conn := range r.conns {
		targets[id] = conn
	}
	r.mu.Unlock()

	var failed []uuid.UUID
	for id, conn := range targets {
		if err := conn.Write(ctx, payload); err != nil {
			if r.logger != nil {
				r.logger.Warn("dropping connection after failed write",
					"connection_id", id.String(),
					"error", err,
				)
			}
			r.wsMetrics.RecordBroadcastDelivery(ctx, "failed")
			failed = append(failed, id)
			continue
		}
		r.wsMetrics.RecordBroadcastDelivery(ctx, "delivered")
	}

	if len(failed) == 0 {
		return
	}

	r.mu.Lock()
	removed := 0
	for _, id := range failed {
		if _, present := r.conns[id]; present {
			delete(r.conns, id)
			removed++
		}
	}
	r.mu.Unlock()

	for i := 0; i < removed; i++ {
		r.wsMetrics.SessionClosed(ctx)
	}
}
