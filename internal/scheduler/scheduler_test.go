package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	calls    atomic.Int32
	run      func(ctx context.Context, call int32) error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if j.run == nil {
		return nil
	}
	return j.run(ctx, n)
}

func waitForResults(t *testing.T, s *Scheduler, name string, n int) []JobResult {
	t.Helper()
	var results []JobResult
	require.Eventually(t, func() bool {
		h, err := s.GetJobHistory(name)
		if err != nil {
			return false
		}
		results = h.Results
		return len(results) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return results
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 30 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "b", schedule: "30 18 * * 1-5"}), "five fields need seconds")

	assert.Equal(t, []string{"a"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
}

func TestScheduler_NextRun(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))
	s.Start()
	defer s.Stop()

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.False(t, next.IsZero())

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestScheduler_RunJobRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(2, time.Millisecond))
	job := &fakeJob{name: "flaky", schedule: "@daily", run: func(_ context.Context, call int32) error {
		if call < 3 {
			return errors.New("not yet")
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	results := waitForResults(t, s, "flaky", 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, 3, results[0].Attempts)
	assert.Empty(t, results[0].Error)
	assert.Error(t, s.RunJob("missing"))
}

func TestScheduler_RunJobFailure(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "bad", schedule: "@daily", run: func(context.Context, int32) error {
		return errors.New("boom")
	}}))

	require.NoError(t, s.RunJob("bad"))
	results := waitForResults(t, s, "bad", 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, 1, results[0].Attempts)
	assert.Equal(t, "boom", results[0].Error)

	stats := s.GetJobStats()["bad"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestScheduler_PanicRecorded(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "p", schedule: "@daily", run: func(context.Context, int32) error {
		panic("kaboom")
	}}))

	require.NoError(t, s.RunJob("p"))
	results := waitForResults(t, s, "p", 1)
	assert.Contains(t, results[0].Error, "kaboom")
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New(logger.Nop())
	release := make(chan struct{})
	started := make(chan struct{})
	job := &fakeJob{name: "slow", schedule: "@daily", run: func(_ context.Context, call int32) error {
		if call == 1 {
			close(started)
			<-release
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("slow"))
	<-started
	require.NoError(t, s.RunJob("slow"))

	results := waitForResults(t, s, "slow", 1)
	assert.True(t, results[0].Skipped)
	close(release)

	results = waitForResults(t, s, "slow", 2)
	assert.True(t, results[1].Success)
	assert.EqualValues(t, 1, job.calls.Load())

	stats := s.GetJobStats()["slow"]
	assert.Equal(t, 1, stats.SkippedCount)
	assert.Equal(t, 1, stats.TotalRuns)
	assert.InDelta(t, 1.0, stats.SuccessRate, 1e-9)
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := New(logger.Nop())
	started := make(chan struct{})
	require.NoError(t, s.AddJob(&fakeJob{name: "long", schedule: "@daily", run: func(ctx context.Context, _ int32) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}))
	s.Start()

	require.NoError(t, s.RunJob("long"))
	<-started
	s.Stop()

	h, err := s.GetJobHistory("long")
	require.NoError(t, err)
	require.Len(t, h.Results, 1)
	assert.Equal(t, context.Canceled.Error(), h.Results[0].Error)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Attempts: i, Success: i%2 == 0})
	}

	require.Len(t, h.Results, historyLimit)
	assert.Equal(t, 20, h.Results[0].Attempts, "oldest results dropped")

	latest := h.GetLatestResults(3)
	require.Len(t, latest, 3)
	assert.Equal(t, historyLimit+19, latest[2].Attempts)

	assert.Len(t, h.GetFailedResults(), historyLimit/2)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(5))
	assert.Zero(t, (&JobHistory{}).GetSuccessRate())
}
