package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/internal/snapshot"
)

// TypeSnapshot is the job type that archives the database.
const TypeSnapshot = "snapshot.create"

// SnapshotHandler creates an archive and then prunes old ones down to keep.
func SnapshotHandler(m *snapshot.Manager, keep int) Handler {
	return func(ctx context.Context, j *Job) error {
		if _, err := m.Create(ctx); err != nil {
			return err
		}
		_, err := m.Prune(ctx, keep)
		return err
	}
}

// Scheduler enqueues a job of one type at a fixed interval, skipping a tick
// while an earlier job of that type is still pending.
type Scheduler struct {
	pool     *WorkerPool
	typ      string
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(pool *WorkerPool, typ string, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{pool: pool, typ: typ, interval: interval, logger: logger, stop: make(chan struct{})}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.pool.repo.DeleteDone(ctx, s.typ); err != nil {
		s.logger.Error("prune finished jobs", "type", s.typ, "err", err)
	}
	n, err := s.pool.repo.Pending(ctx, s.typ)
	if err != nil {
		s.logger.Error("check pending jobs", "type", s.typ, "err", err)
		return
	}
	if n > 0 {
		return
	}
	if _, err := s.pool.Enqueue(ctx, s.typ, struct{}{}, 0); err != nil {
		s.logger.Error("schedule job", "type", s.typ, "err", err)
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
