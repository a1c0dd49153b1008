package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	block bool
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "test job" }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return j.err
}

func TestScheduler_RegisterValidation(t *testing.T) {
	s := New(DefaultConfig())

	assert.ErrorIs(t, s.Register(nil, "@every 1m"), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "bad"}, "not a cron spec"), ErrInvalidSchedule)

	require.NoError(t, s.Register(&countingJob{name: "a"}, "@every 1m"))
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, "@every 1m"), ErrJobAlreadyExists)

	require.NoError(t, s.Unregister("a"))
	assert.ErrorIs(t, s.Unregister("a"), ErrJobNotFound)
}

func TestScheduler_RunNowRecordsHistory(t *testing.T) {
	s := New(DefaultConfig())
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.Register(ok, "@every 1h"))
	require.NoError(t, s.Register(failing, "@every 1h"))

	var completed atomic.Int32
	s.OnJobComplete(func(JobResult) { completed.Add(1) })

	res, err := s.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Manual)

	_, err = s.RunNow(context.Background(), "failing")
	assert.EqualError(t, err, "boom")

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	history := s.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, "ok", history[0].JobName)
	assert.False(t, history[1].Success)
	assert.Equal(t, int32(2), completed.Load())

	infos := s.ListJobs()
	require.Len(t, infos, 2)
	assert.Equal(t, "failing", infos[0].Name)
	assert.Equal(t, int64(1), infos[0].FailCount)
}

func TestScheduler_JobTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JobTimeout = 20 * time.Millisecond
	s := New(cfg)

	job := &countingJob{name: "slow", block: true}
	require.NoError(t, s.Register(job, "@every 1h"))

	_, err := s.RunNow(context.Background(), "slow")
	assert.EqualError(t, err, context.DeadlineExceeded.Error())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(DefaultConfig())
	job := &countingJob{name: "tick"}
	require.NoError(t, s.Register(job, "@every 1s"))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
	assert.False(t, s.IsRunning())
}
