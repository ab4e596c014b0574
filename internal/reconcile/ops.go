package reconcile

import (
	"context"
	"fmt"

	"github.com/grovetools/forksync/pkg/models"
)

// DeleteScopeCommand restores the token scope needed to delete repositories.
const DeleteScopeCommand = "gh auth refresh -h github.com -s delete_repo"

// Clone clones a fork into its local path.
func (r *Reconciler) Clone(ctx context.Context, job models.SyncJob, dryRun bool, emit Emitter) Outcome {
	x := r.begin(job, emit, "clone")
	cloned := models.ForkCloned{Index: job.Index, Key: job.Key()}

	x.status(models.Cloning())
	if dryRun {
		return x.dryRun(ctx, cloned)
	}

	dest := job.Fork.LocalPath
	if err := r.fs.MkdirAll(parentDir(dest)); x.step(StepMkdir, err) != nil {
		return x.finish(models.Failed(prefixed("mkdir", err)))
	}

	if err := r.remote.Clone(ctx, job.Fork, dest); x.step(StepClone, err) != nil {
		return x.finish(models.Failed(Describe(err)))
	}

	x.emit(cloned)
	return x.finish(models.Synced())
}

// Archive archives a fork on the remote.
func (r *Reconciler) Archive(ctx context.Context, job models.SyncJob, dryRun bool, emit Emitter) Outcome {
	x := r.begin(job, emit, "archive")
	archived := models.ForkArchived{Index: job.Index, Key: job.Key()}

	x.status(models.Archiving())
	if dryRun {
		return x.dryRun(ctx, archived)
	}

	if err := r.remote.Archive(ctx, job.Fork); x.step(StepArchive, err) != nil {
		return x.finish(models.Failed(Describe(err)))
	}

	x.emit(archived)
	return x.finish(models.Synced())
}

// Delete removes the local clone, if any, then deletes the fork on the
// remote. A missing delete_repo scope reverts the fork to Pending and emits
// an actionable error instead of failing.
func (r *Reconciler) Delete(ctx context.Context, job models.SyncJob, dryRun bool, emit Emitter) Outcome {
	x := r.begin(job, emit, "delete")
	deleted := models.ForkDeleted{Index: job.Index, Key: job.Key()}

	x.status(models.Deleting())
	if dryRun {
		return x.dryRun(ctx, deleted)
	}

	if path := job.Fork.LocalPath; r.fs.Exists(path) {
		if err := r.fs.RemoveAll(path); x.step(StepRemoveLocal, err) != nil {
			return x.finish(models.Failed(prefixed("rm local", err)))
		}
	}

	err := r.remote.Delete(ctx, job.Fork)
	x.step(StepRemoteDelete, err)
	switch {
	case err == nil:
		x.emit(deleted)
		return x.finish(models.Synced())
	case IsMissingScope(err):
		x.status(models.Pending())
		x.emit(models.ActionableError{
			Index:   job.Index,
			Key:     job.Key(),
			Details: missingScopeDetails(job.Key()),
		})
		x.log.Warn("delete_repo scope missing")
		return Outcome{Status: models.Pending(), Steps: x.steps}
	default:
		return x.finish(models.Failed(Describe(err)))
	}
}

func missingScopeDetails(repo string) models.ErrorDetails {
	return models.ErrorDetails{
		Title: "Missing GitHub Scope",
		Message: fmt.Sprintf("Cannot delete %s.\n\n"+
			"The 'delete_repo' scope is required.\n\n"+
			"Exit the TUI (press q) and run:\n\n"+
			"%s", repo, DeleteScopeCommand),
		Action: &models.Action{Label: "Refresh auth", Command: DeleteScopeCommand},
	}
}
