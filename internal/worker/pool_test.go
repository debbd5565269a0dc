package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int64
	fail    bool
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	if j.fail {
		return &countResult{err: errors.New("job failed")}
	}
	return &countResult{}
}

func TestPoolRunsAllJobs(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(context.Background(), 4)
	pool.Start()
	for i := 0; i < 20; i++ {
		pool.Submit(&countJob{counter: &counter})
	}
	results := pool.Wait()

	if counter.Load() != 20 {
		t.Errorf("executed %d jobs, want 20", counter.Load())
	}
	if len(results) != 20 {
		t.Errorf("collected %d results, want 20", len(results))
	}
}

func TestPoolSubmitNeverBlocksOnBacklog(t *testing.T) {
	// Far more jobs than the queue and results buffers of a one-worker
	// pool can hold. Submit must not wedge waiting for Wait to drain.
	var counter atomic.Int64

	done := make(chan []Result, 1)
	go func() {
		pool := NewPool(context.Background(), 1)
		pool.Start()
		for i := 0; i < 50; i++ {
			pool.Submit(&countJob{counter: &counter})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if counter.Load() != 50 {
			t.Errorf("executed %d jobs, want 50", counter.Load())
		}
		if len(results) != 50 {
			t.Errorf("collected %d results, want 50", len(results))
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("pool wedged: Submit blocked with 50 jobs on 1 worker")
	}
}

type blockingJob struct {
	started chan struct{}
	err     chan error
}

func (j *blockingJob) Execute(ctx context.Context) Result {
	close(j.started)
	select {
	case <-ctx.Done():
		j.err <- ctx.Err()
	case <-time.After(10 * time.Second):
		j.err <- nil
	}
	return &countResult{}
}

func TestPoolJobsInheritCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := &blockingJob{started: make(chan struct{}), err: make(chan error, 1)}
	pool := NewPool(ctx, 1)
	pool.Start()
	pool.Submit(job)

	<-job.started
	cancel()

	if err := <-job.err; err == nil {
		t.Fatalf("job never observed the caller's cancellation")
	}
	pool.Shutdown()
}

func TestPoolWaitIsJoinBarrier(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(context.Background(), 2)
	pool.Start()
	for i := 0; i < 10; i++ {
		pool.Submit(&countJob{counter: &counter})
	}
	_ = pool.Wait()

	// After Wait returns every job has run; nothing is still in flight
	if counter.Load() != 10 {
		t.Errorf("Wait returned before all jobs finished: %d of 10", counter.Load())
	}
}

func TestPoolPropagatesJobErrors(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Submit(&countJob{counter: &counter})
	pool.Submit(&countJob{counter: &counter, fail: true})
	results := pool.Wait()

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(context.Background(), 0)
	pool.Start()
	pool.Submit(&countJob{counter: &counter})
	_ = pool.Wait()

	if counter.Load() != 1 {
		t.Errorf("zero-worker pool must fall back to one worker")
	}
}
