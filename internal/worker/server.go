package worker

import (
	"github.com/hibiken/asynq"
)

// NewServer creates a new Asynq server for processing warming tasks. Cache
// warming is cheap and idempotent, so a small worker pool is plenty.
func NewServer(redisURL string) *asynq.Server {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		panic("failed to parse Redis URL: " + err.Error())
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 4,
		},
	)
}
