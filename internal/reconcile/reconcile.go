// Package reconcile drives a single fork through a sync, clone, archive or
// delete operation and reports each status transition as a ProgressEvent.
package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
)

// VCS is the local version-control surface used on cloned forks.
type VCS interface {
	IsDirty(ctx context.Context, path string) (bool, error)
	CurrentBranch(ctx context.Context, path string) (string, error)
	HasUnpushedCommits(ctx context.Context, path, branch string) (bool, error)
	Stash(ctx context.Context, path string) error
	StashPop(ctx context.Context, path string) error
	Checkout(ctx context.Context, path, branch string) error
	PullFastForwardOnly(ctx context.Context, path string) error
	Fetch(ctx context.Context, path, remote string) error
	ResetHard(ctx context.Context, path, ref string) error
}

// Remote is the hosting-service surface.
type Remote interface {
	Sync(ctx context.Context, fork models.Fork) error
	Clone(ctx context.Context, fork models.Fork, dest string) error
	Archive(ctx context.Context, fork models.Fork) error
	Delete(ctx context.Context, fork models.Fork) error
	CommitsBehind(ctx context.Context, fork models.Fork) (int, error)
}

// Filesystem is the local disk surface.
type Filesystem interface {
	Exists(path string) bool
	MkdirAll(path string) error
	RemoveAll(path string) error
}

// OSFilesystem implements Filesystem on the real disk.
type OSFilesystem struct{}

func (OSFilesystem) Exists(path string) bool     { return models.PathExists(path) }
func (OSFilesystem) MkdirAll(path string) error  { return os.MkdirAll(path, 0o755) }
func (OSFilesystem) RemoveAll(path string) error { return os.RemoveAll(path) }

// Emitter receives progress events. It must not block.
type Emitter func(models.ProgressEvent)

// DefaultDryRunDelay is how long a dry run holds its initial status.
const DefaultDryRunDelay = 500 * time.Millisecond

// Reconciler runs operations for one fork at a time. It holds no per-fork
// state and is safe for concurrent use.
type Reconciler struct {
	vcs         VCS
	remote      Remote
	fs          Filesystem
	dryRunDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration)
	log         *logrus.Entry
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithFilesystem replaces the disk implementation.
func WithFilesystem(fs Filesystem) Option {
	return func(r *Reconciler) { r.fs = fs }
}

// WithDryRunDelay sets how long dry runs hold their initial status.
func WithDryRunDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.dryRunDelay = d }
}

// New creates a Reconciler.
func New(vcs VCS, remote Remote, opts ...Option) *Reconciler {
	r := &Reconciler{
		vcs:         vcs,
		remote:      remote,
		fs:          OSFilesystem{},
		dryRunDelay: DefaultDryRunDelay,
		sleep:       sleepContext,
		log:         logging.NewLogger("reconcile"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// StepResult records one executed step. Rollback and best-effort steps
// are recorded even though their errors never change the outcome.
type StepResult struct {
	Name       string
	Err        error
	BestEffort bool
}

// Outcome is the final status of an operation and the steps it ran.
type Outcome struct {
	Status models.SyncStatus
	Steps  []StepResult
}

// Step returns the first recorded step with name.
func (o Outcome) Step(name string) (StepResult, bool) {
	for _, s := range o.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// StepNames lists recorded step names in order.
func (o Outcome) StepNames() []string {
	names := make([]string, len(o.Steps))
	for i, s := range o.Steps {
		names[i] = s.Name
	}
	return names
}

// run tracks one operation on one job.
type run struct {
	r     *Reconciler
	job   models.SyncJob
	emit  Emitter
	steps []StepResult
	log   *logrus.Entry
}

func (r *Reconciler) begin(job models.SyncJob, emit Emitter, op string) *run {
	if emit == nil {
		emit = func(models.ProgressEvent) {}
	}
	return &run{
		r:    r,
		job:  job,
		emit: emit,
		log:  r.log.WithFields(logrus.Fields{"fork": job.Key(), "op": op}),
	}
}

func (x *run) status(s models.SyncStatus) {
	x.emit(models.StatusUpdate{Index: x.job.Index, Key: x.job.Key(), Status: s})
}

func (x *run) step(name string, err error) error {
	x.steps = append(x.steps, StepResult{Name: name, Err: err})
	return err
}

// bestEffort records a step whose failure is logged and otherwise ignored.
func (x *run) bestEffort(name string, err error) {
	x.steps = append(x.steps, StepResult{Name: name, Err: err, BestEffort: true})
	if err != nil {
		x.log.WithError(err).WithField("step", name).Warn("best-effort step failed")
	}
}

func (x *run) finish(s models.SyncStatus) Outcome {
	x.status(s)
	switch s.Kind {
	case models.StatusFailed:
		x.log.WithField("reason", s.Reason).Warn("operation failed")
	case models.StatusSkipped:
		x.log.WithField("reason", s.Reason).Info("operation skipped")
	default:
		x.log.WithField("status", s.Display()).Debug("operation finished")
	}
	return Outcome{Status: s, Steps: x.steps}
}

// dryRun holds the initial status, optionally emits the structural event,
// then reports success without running anything.
func (x *run) dryRun(ctx context.Context, structural models.ProgressEvent) Outcome {
	x.r.sleep(ctx, x.r.dryRunDelay)
	if structural != nil {
		x.emit(structural)
	}
	return x.finish(models.Synced())
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
