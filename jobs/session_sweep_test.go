package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/docudist/docudist/testing"
)

func TestSessionSweepRemovesOnlyAnonymousSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	require.NoError(t, client.Set(context.Background(), "session:anon", `{"token":""}`, 0).Err())
	require.NoError(t, client.Set(context.Background(), "session:user", `{"token":"bearer-abc"}`, 0).Err())
	require.NoError(t, client.Set(context.Background(), "lookup:supplier", `[{"value":"1"}]`, 0).Err())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewSessionSweepJob(client, logger, nil)
	require.NoError(t, job.Handle(context.Background(), NewSessionSweepTask()))

	assert.False(t, mr.Exists("session:anon"), "anonymous session should be swept")
	assert.True(t, mr.Exists("session:user"), "authenticated session must survive")
	assert.True(t, mr.Exists("lookup:supplier"), "non-session keys are untouched")
}

func TestSessionSweepSkipsMalformedPayloads(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	require.NoError(t, client.Set(context.Background(), "session:broken", "not-json", 0).Err())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewSessionSweepJob(client, logger, nil)
	require.NoError(t, job.Handle(context.Background(), NewSessionSweepTask()))

	assert.True(t, mr.Exists("session:broken"), "unreadable sessions are left for TTL expiry")
}
