package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("basil/business")

	// Recipe gateway metrics
	RecipeSearchesTotal metric.Int64Counter
	RecipeLookupsTotal  metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// AI metrics
	AIAnalysisDuration metric.Float64Histogram

	// Cache metrics
	CacheHitsTotal   metric.Int64Counter
	CacheMissesTotal metric.Int64Counter

	// Provider fallback metrics
	ProviderFallbackTotal metric.Int64Counter
)

func Init() error {
	var err error

	RecipeSearchesTotal, err = meter.Int64Counter(
		"recipe.searches.total",
		metric.WithDescription("Total number of recipe searches"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	RecipeLookupsTotal, err = meter.Int64Counter(
		"recipe.lookups.total",
		metric.WithDescription("Total number of single-recipe lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	AIAnalysisDuration, err = meter.Float64Histogram(
		"ai.analysis.duration",
		metric.WithDescription("Duration of AI recipe analysis and query extraction"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	CacheHitsTotal, err = meter.Int64Counter(
		"cache.hits.total",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	CacheMissesTotal, err = meter.Int64Counter(
		"cache.misses.total",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ProviderFallbackTotal, err = meter.Int64Counter(
		"provider.fallback.total",
		metric.WithDescription("Total number of provider fallback events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
