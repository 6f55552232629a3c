// Package jobs carries the background work that keeps the front-end snappy:
// periodic lookup-cache warmup and a sweep of abandoned anonymous sessions.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLookupWarmup refreshes the Redis lookup snapshots.
	TaskLookupWarmup = "lookup:warmup"
	// TaskSessionSweep removes anonymous sessions left behind by bots.
	TaskSessionSweep = "session:sweep"
)

// LookupWarmupPayload selects which lookup keys to refresh; empty means all.
type LookupWarmupPayload struct {
	Keys []string `json:"keys,omitempty"`
}

// NewLookupWarmupTask constructs an Asynq task.
func NewLookupWarmupTask(payload LookupWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLookupWarmup, data), nil
}

// NewSessionSweepTask constructs an Asynq task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}
