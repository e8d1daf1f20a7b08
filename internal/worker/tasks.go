package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeWarmIndex    = "index:warm"
	TypeWarmFeatured = "featured:warm"
)

// WarmIndexPayload is the payload for index warming tasks.
type WarmIndexPayload struct {
	JobID string `json:"job_id"`
}

// WarmFeaturedPayload is the payload for featured-set warming tasks.
type WarmFeaturedPayload struct {
	JobID string `json:"job_id"`
}

// NewWarmIndexTask creates a task that rebuilds the cached recipe id index.
func NewWarmIndexTask(payload WarmIndexPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWarmIndex, data), nil
}

// NewWarmFeaturedTask creates a task that refreshes the cached featured set.
func NewWarmFeaturedTask(payload WarmFeaturedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWarmFeatured, data), nil
}
