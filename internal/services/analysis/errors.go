package analysis

import (
	"errors"
	"strings"

	apperrors "github.com/recipelens/basil/internal/errors"
)

// ProviderError is a chat-completion failure classified by cause.
type ProviderError struct {
	Type     string // "rate_limit", "server_error", "client_error", "timeout", "unknown"
	Message  string
	Provider string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ClassifyError analyzes an error and returns a ProviderError with
// classification. Returns nil for a nil error.
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	msg := err.Error()

	classified := &ProviderError{
		Type:     classify(err, msg),
		Message:  msg,
		Provider: provider,
	}
	return classified
}

func classify(err error, msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "status 429"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "too many requests"):
		return "rate_limit"
	case strings.Contains(lower, "deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "timeout"
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Type == apperrors.ErrorTypeRateLimit:
			return "rate_limit"
		case appErr.StatusCode >= 500:
			return "server_error"
		case appErr.StatusCode >= 400:
			return "client_error"
		}
	}

	switch {
	case strings.Contains(lower, "status 5"),
		strings.Contains(lower, "server error"):
		return "server_error"
	case strings.Contains(lower, "status 4"),
		strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "bad request"),
		strings.Contains(lower, "forbidden"):
		return "client_error"
	}

	return "unknown"
}

// IsRetryableFailure reports whether a secondary provider is worth trying
// after this error. Client errors are not: a malformed request will fail
// everywhere.
func IsRetryableFailure(err error) bool {
	providerErr := ClassifyError(err, "")
	if providerErr == nil {
		return false
	}

	switch providerErr.Type {
	case "rate_limit", "server_error", "timeout":
		return true
	default:
		return false
	}
}
