package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
)

func TestRunner_PicksUpDueJobsAndStopsOnCancel(t *testing.T) {
	f := newPipelineFixture()
	past := time.Now().Add(-time.Minute)
	user := uuid.New()
	f.tokens.rows = []model.DeviceToken{tokenRow(user, "tok", time.Now())}

	job := &model.PushJob{
		Title: "Tick", Body: "B",
		Audience:    model.JSONMap{"all": true},
		ScheduledAt: &past,
		Status:      model.JobStatusQueued,
	}
	require.NoError(t, f.ledger.Create(context.Background(), job))

	runner := NewRunner(f.svc, 10*time.Millisecond, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.ledger.status(job.ID) == model.JobStatusDone
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on cancel")
	}

	assert.Equal(t, 1, f.gw.attemptCount("tok"))
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(nil, 0, 0)
	assert.Equal(t, time.Minute, runner.interval)
	assert.Equal(t, 10, runner.limit)
}
