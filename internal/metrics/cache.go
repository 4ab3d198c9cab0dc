package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Lookup outcomes recorded by CacheMetrics.
const (
	// LookupHit means a cached password opened the shrine.
	LookupHit = "hit"
	// LookupMiss means no password was cached for the shrine's UUID.
	LookupMiss = "miss"
	// LookupReject means the cached password failed decryption.
	LookupReject = "reject"
)

// CacheMetrics defines the interface for recording password-cache lookup
// outcomes on the agent's key routes.
type CacheMetrics interface {
	// RecordLookup records one cache lookup with its outcome
	// (LookupHit, LookupMiss, or LookupReject).
	RecordLookup(ctx context.Context, outcome string)
}

// cacheMetrics implements CacheMetrics using OpenTelemetry metrics.
type cacheMetrics struct {
	lookupCounter metric.Int64Counter
}

// NewCacheMetrics creates a CacheMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for the metric name (e.g., "shrine_agent").
// Returns error if the counter cannot be initialized.
func NewCacheMetrics(meterProvider metric.MeterProvider, namespace string) (CacheMetrics, error) {
	meter := meterProvider.Meter(namespace)

	lookupCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_password_cache_lookups_total", namespace),
		metric.WithDescription("Total number of password cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup counter: %w", err)
	}

	return &cacheMetrics{lookupCounter: lookupCounter}, nil
}

// RecordLookup increments the lookup counter with the outcome label.
func (c *cacheMetrics) RecordLookup(ctx context.Context, outcome string) {
	c.lookupCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpCacheMetrics is a no-op implementation of CacheMetrics for when metrics are disabled.
type NoOpCacheMetrics struct{}

// NewNoOpCacheMetrics creates a no-op CacheMetrics implementation.
func NewNoOpCacheMetrics() CacheMetrics {
	return &NoOpCacheMetrics{}
}

// RecordLookup does nothing when metrics are disabled.
func (n *NoOpCacheMetrics) RecordLookup(ctx context.Context, outcome string) {
	// No-op
}
