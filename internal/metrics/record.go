package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// The helpers below are nil-safe so call sites work before Init (tests,
// tools) without guarding every instrument.

// RecordExternalCall records one outbound API call and its duration.
func RecordExternalCall(ctx context.Context, provider string, start time.Time) {
	if ExternalAPICallsTotal == nil || ExternalAPIDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	ExternalAPICallsTotal.Add(ctx, 1, attrs)
	ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// RecordAnalysisDuration records the duration of one AI gateway operation.
func RecordAnalysisDuration(ctx context.Context, operation string, start time.Time) {
	if AIAnalysisDuration == nil {
		return
	}
	AIAnalysisDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordCacheHit counts a cache hit for the given key kind.
func RecordCacheHit(ctx context.Context, kind string) {
	if CacheHitsTotal == nil {
		return
	}
	CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCacheMiss counts a cache miss for the given key kind.
func RecordCacheMiss(ctx context.Context, kind string) {
	if CacheMissesTotal == nil {
		return
	}
	CacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFallback counts a provider fallback event.
func RecordFallback(ctx context.Context, from, to, reason string) {
	if ProviderFallbackTotal == nil {
		return
	}
	ProviderFallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from_provider", from),
		attribute.String("to_provider", to),
		attribute.String("reason", reason),
	))
}

// RecordSearch counts one recipe search by mode.
func RecordSearch(ctx context.Context, mode string) {
	if RecipeSearchesTotal == nil {
		return
	}
	RecipeSearchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordLookup counts one single-recipe lookup.
func RecordLookup(ctx context.Context, outcome string) {
	if RecipeLookupsTotal == nil {
		return
	}
	RecipeLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
