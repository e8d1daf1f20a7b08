package utils

import (
	"context"
	"sync"
)

// RunParallelWithResults executes multiple functions concurrently and collects
// their results in input order. Failed slots carry their error in the second
// slice; the corresponding result is the zero value.
func RunParallelWithResults[T any](ctx context.Context, funcs []func(ctx context.Context) (T, error)) ([]T, []error) {
	if len(funcs) == 0 {
		return nil, nil
	}

	results := make([]T, len(funcs))
	errors := make([]error, len(funcs))

	var wg sync.WaitGroup
	wg.Add(len(funcs))

	for i, fn := range funcs {
		go func() {
			defer wg.Done()
			result, err := fn(ctx)
			results[i] = result
			errors[i] = err
		}()
	}

	wg.Wait()

	return results, errors
}
