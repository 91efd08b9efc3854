package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	closeOnce     sync.Once
}

// WorkerStats holds statistics about the worker. CompletedJobs counts
// every finished job; FailedJobs is the subset that returned an error or
// panicked.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
	ScheduledJobs int   `json:"scheduled_jobs"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. A full queue
// runs the job on the caller's goroutine.
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("Worker queue full, running job synchronously")
		w.run("inline", job)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()
		w.run("async", job)
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(fmt.Sprintf("worker-%d", workerID), job)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.schedule(interval, false, job)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals.
func (w *Worker) ScheduleEveryImmediate(interval time.Duration, job Job) {
	w.schedule(interval, true, job)
}

func (w *Worker) schedule(interval time.Duration, immediate bool, job Job) {
	w.statsMu.Lock()
	w.stats.ScheduledJobs++
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run("scheduler", job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run("scheduler", job)
			}
		}
	}()
}

// run executes job with stats tracking and panic recovery.
func (w *Worker) run(source string, job Job) {
	w.trackJobStart()
	start := time.Now()
	failed := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panic", "source", source, "panic", r)
			failed = true
		}
		w.trackJobEnd(failed)
	}()

	if err := job(w.ctx); err != nil {
		logger.Error("Job failed", "source", source, "error", err)
		failed = true
		return
	}
	logger.Debug("Job completed", "source", source, "elapsed", time.Since(start))
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.cancel()
		close(w.queue)
	})
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(failed bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if failed {
		w.stats.FailedJobs++
	}
}
