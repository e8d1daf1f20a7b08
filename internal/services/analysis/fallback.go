package analysis

import (
	"context"
	"log/slog"

	apperrors "github.com/recipelens/basil/internal/errors"
	"github.com/recipelens/basil/internal/metrics"
)

// FallbackProvider implements ChatProvider with fallback logic: the primary
// provider answers unless it fails in a way a different provider could
// survive (rate limit, outage, timeout).
type FallbackProvider struct {
	primary   ChatProvider
	secondary ChatProvider
}

// NewFallbackProvider creates a new fallback provider.
func NewFallbackProvider(primary, secondary ChatProvider) *FallbackProvider {
	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
	}
}

func (f *FallbackProvider) Name() string {
	return f.primary.Name()
}

// Chat tries the primary provider first, falls back to secondary on
// retryable errors.
func (f *FallbackProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	result, err := f.primary.Chat(ctx, req)
	if err == nil {
		return result, nil
	}

	providerErr := ClassifyError(err, f.primary.Name())

	if !IsRetryableFailure(err) {
		slog.Info("primary chat provider failed with non-retryable error, not attempting fallback",
			"provider", f.primary.Name(),
			"error_type", providerErr.Type,
			"error", err.Error())
		return "", err
	}

	slog.Info("primary chat provider failed, attempting fallback",
		"provider", f.primary.Name(),
		"fallback", f.secondary.Name(),
		"error_type", providerErr.Type,
		"error", err.Error())

	metrics.RecordFallback(ctx, f.primary.Name(), f.secondary.Name(), providerErr.Type)

	result, fallbackErr := f.secondary.Chat(ctx, req)
	if fallbackErr == nil {
		slog.Info("fallback chat provider succeeded",
			"provider", f.secondary.Name(),
			"primary_error_type", providerErr.Type)
		return result, nil
	}

	fallbackProviderErr := ClassifyError(fallbackErr, f.secondary.Name())
	slog.Error("both chat providers failed",
		"primary_error_type", providerErr.Type,
		"primary_error", err.Error(),
		"fallback_error_type", fallbackProviderErr.Type,
		"fallback_error", fallbackErr.Error())

	return "", apperrors.NewAnalysisError(
		"both primary and fallback providers failed",
		"PROVIDER_FALLBACK_FAILED",
		err,
	)
}
