package tasks

import (
	"context" // Cancellation
	"errors"  // Error inspection
	"sync"    // Goroutine bookkeeping
	"time"    // Poll timeout and backoff

	"github.com/sirupsen/logrus" // Logging
)

// Worker pulls jobs from a Source and runs them on a fixed goroutine pool
type Worker struct {
	source         Source                 // Where jobs come from and go back to
	handlers       map[string]HandlerFunc // Job name to handler
	concurrency    int                    // Goroutines pulling from source
	maxAttempts    int                    // Deliveries before a job is dropped
	pollTimeout    time.Duration          // Longest single Dequeue wait
	jobTimeout     time.Duration          // Longest single handler run
	requeueTimeout time.Duration          // Longest Requeue call
}

// NewWorker creates a worker pool
func NewWorker(source Source, handlers map[string]HandlerFunc, concurrency, maxAttempts int) *Worker {
	if concurrency < 1 {
		concurrency = 1 // At least one goroutine
	}
	if maxAttempts < 1 {
		maxAttempts = 1 // Every job runs once
	}
	return &Worker{
		source:         source,
		handlers:       handlers,
		concurrency:    concurrency,
		maxAttempts:    maxAttempts,
		pollTimeout:    5 * time.Second,
		jobTimeout:     2 * time.Minute,
		requeueTimeout: 5 * time.Second,
	}
}

// Run takes jobs until ctx is cancelled, then waits for the jobs already taken.
// Cancelling ctx only stops the pulling; a running job keeps its own context.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup // Tracks the pulling goroutines
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done() // Mark goroutine finished
			w.loop(ctx, id) // Pull until cancelled
		}(i)
	}
	logrus.WithField("concurrency", w.concurrency).Info("Worker started") // Log start
	wg.Wait()                                                             // Wait for in-flight jobs
	logrus.Info("Worker stopped")                                         // Log stop
}

func (w *Worker) loop(ctx context.Context, id int) {
	for ctx.Err() == nil {
		job, err := w.source.Dequeue(ctx, w.pollTimeout) // Block for the next job
		if err != nil {
			if ctx.Err() != nil {
				return // Shutting down
			}
			logrus.WithFields(logrus.Fields{
				"worker": id,          // Goroutine index
				"error":  err.Error(), // Queue error
			}).Error("Dequeue failed")
			select {
			case <-ctx.Done():
				return // Shutting down
			case <-time.After(time.Second): // Back off before retrying
			}
			continue
		}
		if job == nil {
			continue // Poll timed out
		}
		_ = w.Process(ctx, *job) // Outcome already logged
	}
}

// Process runs one job and requeues it on failure until maxAttempts is reached.
// The handler and the requeue are detached from ctx cancellation and bounded by their own timeouts.
func (w *Worker) Process(ctx context.Context, job Job) error {
	entry := logrus.WithFields(logrus.Fields{
		"job_id": job.ID,   // Job handle
		"job":    job.Name, // Job name
		"args":   job.Args, // Entity ids
	})
	handler, ok := w.handlers[job.Name] // Look up handler
	if !ok {
		entry.Error("Unknown job, dropping")
		return nil
	}

	detached := context.WithoutCancel(ctx)                        // Survive shutdown
	jobCtx, cancel := context.WithTimeout(detached, w.jobTimeout) // Bound the handler
	defer cancel()

	start := time.Now()              // Start timing
	err := handler(jobCtx, job.Args) // Run the job
	if err == nil {
		entry.WithField("took", time.Since(start).String()).Info("Job finished")
		return nil
	}
	job.Attempts++ // Count the failed delivery
	entry = entry.WithFields(logrus.Fields{
		"attempts": job.Attempts, // Failed deliveries so far
		"error":    err.Error(),  // Handler error
	})
	if job.Attempts >= w.maxAttempts || errors.Is(err, ErrBadArgs) {
		entry.Error("Job failed, giving up")
		return err
	}

	requeueCtx, cancelRequeue := context.WithTimeout(detached, w.requeueTimeout) // Bound the push
	defer cancelRequeue()
	if rerr := w.source.Requeue(requeueCtx, job); rerr != nil {
		entry.WithField("requeue_error", rerr.Error()).Error("Job failed and could not be requeued")
		return err
	}
	entry.Warn("Job failed, requeued")
	return err
}
