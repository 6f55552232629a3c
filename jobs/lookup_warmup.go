package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/docudist/docudist/internal/jobs"
	"github.com/docudist/docudist/internal/lookups"
)

// LookupWarmupJob refreshes the Redis lookup snapshots with a service token,
// so the first form render of the day does not pay the backend round trips.
type LookupWarmupJob struct {
	Lookups *lookups.Service
	Token   string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLookupWarmupJob wires dependencies for the warmup handler.
func NewLookupWarmupJob(lookupSvc *lookups.Service, token string, logger *slog.Logger, metrics *jobmetrics.Metrics) *LookupWarmupJob {
	return &LookupWarmupJob{Lookups: lookupSvc, Token: token, Logger: logger, Metrics: metrics}
}

// Handle processes lookup warmup tasks.
func (j *LookupWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Lookups == nil {
		return errors.New("lookup warmup: handler not configured")
	}
	var payload LookupWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.Metrics.Track(TaskLookupWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if len(payload.Keys) == 0 {
		resultErr = j.Lookups.Warm(ctx, j.Token)
	} else {
		for _, key := range payload.Keys {
			if err := j.Lookups.Refresh(ctx, j.Token, key); err != nil && resultErr == nil {
				resultErr = err
			}
		}
	}
	if resultErr != nil {
		if j.Logger != nil {
			j.Logger.Warn("lookup warmup", slog.Any("error", resultErr))
		}
		return resultErr
	}
	return nil
}
