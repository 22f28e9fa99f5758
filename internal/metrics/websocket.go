package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WebsocketMetrics defines the interface for recording chat websocket metrics.
// Tracks the number of live sessions and broadcast delivery outcomes.
type WebsocketMetrics interface {
	// SessionOpened records a new websocket session.
	SessionOpened(ctx context.Context)

	// SessionClosed records the end of a websocket session.
	SessionClosed(ctx context.Context)

	// RecordBroadcastDelivery records one broadcast write outcome.
	// Status examples: "delivered", "failed"
	RecordBroadcastDelivery(ctx context.Context, status string)
}

// websocketMetrics implements WebsocketMetrics using OpenTelemetry metrics.
type websocketMetrics struct {
	sessionGauge    metric.Int64UpDownCounter
	deliveryCounter metric.Int64Counter
}

// NewWebsocketMetrics creates a new WebsocketMetrics implementation using the provided meter provider.
// Returns error if meters cannot be initialized.
func NewWebsocketMetrics(meterProvider metric.MeterProvider, namespace string) (WebsocketMetrics, error) {
	meter := meterProvider.Meter(namespace)

	sessionGauge, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_websocket_sessions", namespace),
		metric.WithDescription("Number of open websocket sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session gauge: %w", err)
	}

	deliveryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_websocket_broadcast_deliveries_total", namespace),
		metric.WithDescription("Total number of broadcast delivery attempts"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	return &websocketMetrics{
		sessionGauge:    sessionGauge,
		deliveryCounter: deliveryCounter,
	}, nil
}

// SessionOpened increments the open session gauge.
func (w *websocketMetrics) SessionOpened(ctx context.Context) {
	w.sessionGauge.Add(ctx, 1)
}

// SessionClosed decrements the open session gauge.
func (w *websocketMetrics) SessionClosed(ctx context.Context) {
	w.sessionGauge.Add(ctx, -1)
}

// RecordBroadcastDelivery increments the delivery counter with a status label.
func (w *websocketMetrics) RecordBroadcastDelivery(ctx context.Context, status string) {
	w.deliveryCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// NoOpWebsocketMetrics is a no-op implementation of WebsocketMetrics for when metrics are disabled.
type NoOpWebsocketMetrics struct{}

// NewNoOpWebsocketMetrics creates a no-op WebsocketMetrics implementation.
func NewNoOpWebsocketMetrics() WebsocketMetrics {
	return &NoOpWebsocketMetrics{}
}

// SessionOpened does nothing when metrics are disabled.
func (n *NoOpWebsocketMetrics) SessionOpened(ctx context.Context) {
	// No-op
}

// SessionClosed does nothing when metrics are disabled.
func (n *NoOpWebsocketMetrics) SessionClosed(ctx context.Context) {
	// No-op
}

// RecordBroadcastDelivery does nothing when metrics are disabled.
func (n *NoOpWebsocketMetrics) RecordBroadcastDelivery(ctx context.Context, status string) {
	// No-op
}
