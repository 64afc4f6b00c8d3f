package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/internal/metrics"
)

type WorkerPool struct {
	repo         *Repository
	handlers     map[string]Handler
	logger       *slog.Logger
	workerCount  int
	pollInterval time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func NewWorkerPool(repo *Repository, handlers map[string]Handler, logger *slog.Logger, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		repo:         repo,
		handlers:     handlers,
		logger:       logger,
		workerCount:  workerCount,
		pollInterval: 500 * time.Millisecond,
		stop:         make(chan struct{}),
	}
}

// Start requeues jobs left running by an earlier process and launches the
// worker goroutines.
func (p *WorkerPool) Start(ctx context.Context) {
	if n, err := p.repo.RequeueRunning(ctx); err != nil {
		p.logger.Error("requeue running jobs", "err", err)
	} else if n > 0 {
		p.logger.Warn("requeued interrupted jobs", "count", n)
	}
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them. It is safe to call more
// than once.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// wait sleeps for d and reports false when the pool is shutting down.
func (p *WorkerPool) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Info("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		default:
		}

		job, err := p.repo.FetchNext(ctx)
		if err != nil {
			p.logger.Error("fetch job", "err", err)
			if !p.wait(ctx, time.Second) {
				return
			}
			continue
		}
		if job == nil {
			if !p.wait(ctx, p.pollInterval) {
				return
			}
			continue
		}
		p.run(ctx, job)
	}
}

// run executes job. Bookkeeping writes use a context detached from ctx so a
// shutdown never leaves the row claimed.
func (p *WorkerPool) run(ctx context.Context, job *Job) {
	store := context.WithoutCancel(ctx)
	h, ok := p.handlers[job.Type]
	if !ok {
		job.Status = StatusFailed
		job.LastError = ErrNoHandler.Error()
		metrics.Jobs.WithLabelValues(job.Type, "dead_letter").Inc()
		if err := p.repo.MoveToDeadLetter(store, job); err != nil {
			p.logger.Error("move to dead letter", "job_id", job.ID, "err", err)
		}
		return
	}

	err := h(ctx, job)
	if err == nil {
		job.Status = StatusDone
		job.LastError = ""
		metrics.Jobs.WithLabelValues(job.Type, "ok").Inc()
		if upErr := p.repo.UpdateJob(store, job); upErr != nil {
			p.logger.Error("update finished job", "job_id", job.ID, "err", upErr)
		}
		return
	}

	if ctx.Err() != nil {
		job.Status = StatusQueued
		job.LastError = err.Error()
		p.logger.Info("job interrupted, requeued", "job_id", job.ID, "type", job.Type)
		if upErr := p.repo.UpdateJob(store, job); upErr != nil {
			p.logger.Error("requeue interrupted job", "job_id", job.ID, "err", upErr)
		}
		return
	}

	job.RetryCount++
	job.LastError = err.Error()
	p.logger.Warn("job failed", "job_id", job.ID, "type", job.Type, "attempt", job.RetryCount, "err", err)
	if job.RetryCount >= job.MaxRetries {
		job.Status = StatusFailed
		metrics.Jobs.WithLabelValues(job.Type, "dead_letter").Inc()
		if mvErr := p.repo.MoveToDeadLetter(store, job); mvErr != nil {
			p.logger.Error("move to dead letter", "job_id", job.ID, "err", mvErr)
		}
		return
	}

	metrics.Jobs.WithLabelValues(job.Type, "retry").Inc()
	job.ScheduledAt = p.repo.now().Add(BackoffDuration(job.RetryCount))
	job.Status = StatusRetry
	if upErr := p.repo.UpdateJob(store, job); upErr != nil {
		p.logger.Error("update job for retry", "job_id", job.ID, "err", upErr)
	}
}

// Enqueue convenience helper that creates a job and persists it
func (p *WorkerPool) Enqueue(ctx context.Context, typ string, payload any, maxRetries int) (int64, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	return p.repo.Enqueue(ctx, &Job{Type: typ, Payload: b, MaxRetries: maxRetries})
}
