package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/docudist/docudist/internal/jobs"
)

// SessionSweepJob deletes anonymous sessions (no backend token) ahead of
// their TTL. Crawlers and health checks leave a steady trickle of them.
type SessionSweepJob struct {
	Redis   *redis.Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSessionSweepJob wires dependencies for the sweep handler.
func NewSessionSweepJob(client *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionSweepJob {
	return &SessionSweepJob{Redis: client, Logger: logger, Metrics: metrics}
}

type sweptPayload struct {
	Token string `json:"token"`
}

// Handle processes session sweep tasks.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Redis == nil {
		return errors.New("session sweep: handler not configured")
	}

	tracker := j.Metrics.Track(TaskSessionSweep)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	removed := 0
	iter := j.Redis.Scan(ctx, 0, "session:*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := j.Redis.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var payload sweptPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			continue
		}
		if payload.Token != "" {
			continue
		}
		if err := j.Redis.Del(ctx, key).Err(); err == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		resultErr = err
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("session sweep done", slog.Int("removed", removed))
	}
	return nil
}
