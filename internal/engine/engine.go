// Package engine schedules reconciliation runs on background workers and
// forwards their progress to a single consumer through a Queue.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/internal/reconcile"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
)

// Kind selects an operation.
type Kind int

const (
	KindSync Kind = iota
	KindClone
	KindArchive
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindClone:
		return "clone"
	case KindArchive:
		return "archive"
	case KindDelete:
		return "delete"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Runner executes one operation for one job.
type Runner interface {
	Sync(ctx context.Context, job models.SyncJob, dryRun bool, emit reconcile.Emitter) reconcile.Outcome
	Clone(ctx context.Context, job models.SyncJob, dryRun bool, emit reconcile.Emitter) reconcile.Outcome
	Archive(ctx context.Context, job models.SyncJob, dryRun bool, emit reconcile.Emitter) reconcile.Outcome
	Delete(ctx context.Context, job models.SyncJob, dryRun bool, emit reconcile.Emitter) reconcile.Outcome
}

// Refresher re-fetches the full fork list.
type Refresher interface {
	Refresh(ctx context.Context) ([]models.Fork, error)
}

// DefaultBatchPause separates consecutive jobs in a batch sync.
const DefaultBatchPause = 100 * time.Millisecond

// Engine starts workers. Workers are never cancelled once started; the
// consumer simply ignores events it no longer cares about.
type Engine struct {
	runner     Runner
	refresher  Refresher
	queue      *Queue
	batchPause time.Duration
	log        *logrus.Entry
	wg         sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchPause sets the pause between jobs of a batch sync.
func WithBatchPause(d time.Duration) Option {
	return func(e *Engine) { e.batchPause = d }
}

// WithRefresher enables StartRefresh.
func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

// WithQueue uses q instead of a fresh queue.
func WithQueue(q *Queue) Option {
	return func(e *Engine) { e.queue = q }
}

// New creates an Engine.
func New(runner Runner, opts ...Option) *Engine {
	e := &Engine{
		runner:     runner,
		queue:      NewQueue(),
		batchPause: DefaultBatchPause,
		log:        logging.NewLogger("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Events returns the queue the consumer drains.
func (e *Engine) Events() *Queue {
	return e.queue
}

func (e *Engine) emit(ev models.ProgressEvent) {
	e.queue.Send(ev)
}

func (e *Engine) spawn(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// StartBatchSync syncs jobs strictly in order on a single worker, pausing
// briefly between jobs.
func (e *Engine) StartBatchSync(ctx context.Context, jobs []models.SyncJob, dryRun bool) {
	jobs = append([]models.SyncJob(nil), jobs...)
	e.log.WithFields(logrus.Fields{"jobs": len(jobs), "dry_run": dryRun}).Info("Starting batch sync")

	e.spawn(func() {
		for i, job := range jobs {
			if i > 0 && e.batchPause > 0 {
				time.Sleep(e.batchPause)
			}
			e.runner.Sync(ctx, job, dryRun, e.emit)
		}
		e.log.WithField("jobs", len(jobs)).Debug("Batch sync worker finished")
	})
}

// StartSingle runs one operation on its own worker. Single operations may
// overlap each other and a running batch.
func (e *Engine) StartSingle(ctx context.Context, kind Kind, job models.SyncJob, dryRun bool) {
	e.log.WithFields(logrus.Fields{"op": kind.String(), "fork": job.Key(), "dry_run": dryRun}).Info("Starting operation")

	e.spawn(func() {
		switch kind {
		case KindSync:
			e.runner.Sync(ctx, job, dryRun, e.emit)
		case KindClone:
			e.runner.Clone(ctx, job, dryRun, e.emit)
		case KindArchive:
			e.runner.Archive(ctx, job, dryRun, e.emit)
		case KindDelete:
			e.runner.Delete(ctx, job, dryRun, e.emit)
		default:
			e.emit(models.StatusUpdate{Index: job.Index, Key: job.Key(), Status: models.Failed("unknown operation")})
		}
	})
}

// StartRefresh re-fetches the fork list in the background and emits
// ForksRefreshed or RefreshFailed.
func (e *Engine) StartRefresh(ctx context.Context) {
	if e.refresher == nil {
		e.emit(models.RefreshFailed{Reason: "refresh not configured"})
		return
	}

	e.spawn(func() {
		forks, err := e.refresher.Refresh(ctx)
		if err != nil {
			e.log.WithError(err).Warn("Background refresh failed")
			e.emit(models.RefreshFailed{Reason: err.Error()})
			return
		}
		e.log.WithField("forks", len(forks)).Info("Background refresh complete")
		e.emit(models.ForksRefreshed{Forks: forks})
	})
}

// Wait blocks until every started worker has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
