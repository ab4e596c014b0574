package reconcile

import (
	"context"

	"github.com/grovetools/forksync/pkg/models"
)

// Step names recorded in Outcome.Steps.
const (
	StepCommitsBehind  = "commits-behind"
	StepDirtyCheck     = "dirty-check"
	StepCurrentBranch  = "current-branch"
	StepUnpushedCheck  = "unpushed-check"
	StepStash          = "stash"
	StepCheckout       = "checkout"
	StepRemoteSync     = "remote-sync"
	StepPull           = "pull"
	StepFetch          = "fetch"
	StepReset          = "reset"
	StepRestoreBranch  = "restore-branch"
	StepStashPop       = "stash-pop"
	StepMkdir          = "mkdir"
	StepClone          = "clone"
	StepArchive        = "archive"
	StepRemoveLocal    = "remove-local"
	StepRemoteDelete   = "remote-delete"
	rollbackStepPrefix = "rollback-"
)

// Sync brings a fork up to date with its parent. When a local clone exists
// it is stashed, switched and fast-forwarded around the remote sync, and
// restored to its original branch and stash afterwards. A failure after
// local mutation rolls those changes back before reporting.
func (r *Reconciler) Sync(ctx context.Context, job models.SyncJob, dryRun bool, emit Emitter) Outcome {
	x := r.begin(job, emit, "sync")
	fork := job.Fork

	x.status(models.Checking())

	if dryRun {
		return x.dryRun(ctx, nil)
	}

	if !r.fs.Exists(fork.LocalPath) {
		return x.syncRemoteOnly(ctx)
	}

	behind := x.commitsBehind(ctx)
	path := fork.LocalPath

	dirty, err := r.vcs.IsDirty(ctx, path)
	if x.step(StepDirtyCheck, err) != nil {
		return x.finish(models.Failed(Describe(err)))
	}

	original, err := r.vcs.CurrentBranch(ctx, path)
	if x.step(StepCurrentBranch, err) != nil {
		return x.finish(models.Failed(reasonOr(err, ReasonGetBranch)))
	}

	// An error here is treated as "no unpushed commits".
	unpushed, err := r.vcs.HasUnpushedCommits(ctx, path, fork.DefaultBranch)
	x.bestEffort(StepUnpushedCheck, err)
	if err == nil && unpushed {
		return x.finish(models.Skipped(ReasonUnpushedCommits))
	}

	stashed := false
	if dirty {
		x.status(models.Stashing())
		if err := r.vcs.Stash(ctx, path); x.step(StepStash, err) != nil {
			return x.finish(models.Failed(reasonOr(err, ReasonStash)))
		}
		stashed = true
	}

	switched := original != fork.DefaultBranch
	if switched {
		if err := r.vcs.Checkout(ctx, path, fork.DefaultBranch); x.step(StepCheckout, err) != nil {
			x.rollback(ctx, path, "", stashed)
			return x.finish(models.Failed(reasonOr(err, ReasonCheckout)))
		}
	}

	x.status(models.Syncing())
	if err := r.remote.Sync(ctx, fork); x.step(StepRemoteSync, err) != nil {
		restore := ""
		if switched {
			restore = original
		}
		x.rollback(ctx, path, restore, stashed)
		return x.finish(models.Failed(reasonOr(err, ReasonSync)))
	}

	x.status(models.Fetching())
	x.updateLocal(ctx, path, fork.DefaultBranch)

	if switched || stashed {
		x.status(models.Restoring())
		rctx := context.WithoutCancel(ctx)
		if switched {
			x.bestEffort(StepRestoreBranch, r.vcs.Checkout(rctx, path, original))
		}
		if stashed {
			x.bestEffort(StepStashPop, r.vcs.StashPop(rctx, path))
		}
	}

	return x.finish(models.SyncedWith(behind))
}

// syncRemoteOnly syncs a fork that has no local clone.
func (x *run) syncRemoteOnly(ctx context.Context) Outcome {
	fork := x.job.Fork
	behind := x.commitsBehind(ctx)

	x.status(models.Syncing())
	err := x.r.remote.Sync(ctx, fork)
	x.step(StepRemoteSync, err)
	switch {
	case err == nil:
		return x.finish(models.SyncedWith(behind))
	case IsTimeout(err):
		return x.finish(models.Failed(ReasonTimedOut))
	case isAlreadyUpToDate(err):
		return x.finish(models.SyncedCount(0))
	default:
		return x.finish(models.Failed(Describe(err)))
	}
}

// commitsBehind is best-effort; nil means unknown.
func (x *run) commitsBehind(ctx context.Context) *int {
	n, err := x.r.remote.CommitsBehind(ctx, x.job.Fork)
	x.bestEffort(StepCommitsBehind, err)
	if err != nil {
		return nil
	}
	return &n
}

// updateLocal pulls the synced branch, falling back to fetch and a hard
// reset onto the remote tip. Failures leave the remote authoritative and
// are only logged.
func (x *run) updateLocal(ctx context.Context, path, branch string) {
	vcs := x.r.vcs

	err := vcs.PullFastForwardOnly(ctx, path)
	x.bestEffort(StepPull, err)
	if err == nil {
		return
	}

	x.bestEffort(StepFetch, vcs.Fetch(ctx, path, "origin"))
	x.bestEffort(StepReset, vcs.ResetHard(ctx, path, "origin/"+branch))
}

// rollback undoes local mutations in reverse order: restore the original
// branch if one is given, then pop the stash if one was created. It runs
// even when ctx is already done.
func (x *run) rollback(ctx context.Context, path, restoreBranch string, stashed bool) {
	rctx := context.WithoutCancel(ctx)
	if restoreBranch != "" {
		x.bestEffort(rollbackStepPrefix+StepRestoreBranch, x.r.vcs.Checkout(rctx, path, restoreBranch))
	}
	if stashed {
		x.bestEffort(rollbackStepPrefix+StepStashPop, x.r.vcs.StashPop(rctx, path))
	}
}
