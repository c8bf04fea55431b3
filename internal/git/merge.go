package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// MergeBranch merges sourceBranch into the current branch. Already-merged
// sources are a no-op, ancestors of the source fast-forward, and anything
// else produces a real merge commit. A conflicted merge is aborted and the
// conflicting paths are reported.
func (r *Repository) MergeBranch(ctx context.Context, sourceBranch string) error {
	head, err := r.ensureBranchHead()
	if err != nil {
		return err
	}

	sourceRef, err := r.Reference(plumbing.NewBranchReferenceName(sourceBranch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitliteerrors.NewReferenceNotFoundError(sourceBranch)
		}
		return fmt.Errorf("failed to resolve branch %q: %w", sourceBranch, err)
	}

	headCommit, err := r.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	sourceCommit, err := r.CommitObject(sourceRef.Hash())
	if err != nil {
		return fmt.Errorf("failed to load commit for %q: %w", sourceBranch, err)
	}

	switch analyzeMerge(headCommit, sourceCommit) {
	case mergeUpToDate:
		r.notify.Info("already up to date")
		return nil
	case mergeFastForward:
		return r.fastForward(sourceCommit.Hash)
	case mergeNormal:
		return r.normalMerge(ctx, sourceBranch, sourceCommit.Hash)
	default:
		return gitliteerrors.ErrUnhandledMergeState
	}
}

type mergeAnalysis int

const (
	mergeUpToDate mergeAnalysis = iota
	mergeFastForward
	mergeNormal
)

func analyzeMerge(head, source *object.Commit) mergeAnalysis {
	switch {
	case source.Hash == head.Hash:
		return mergeUpToDate
	case isAncestor(source, head):
		return mergeUpToDate
	case isAncestor(head, source):
		return mergeFastForward
	default:
		return mergeNormal
	}
}

func isAncestor(ancestor, descendant *object.Commit) bool {
	ok, err := ancestor.IsAncestor(descendant)
	return err == nil && ok
}

// fastForward moves the branch ref and worktree to target without creating a
// merge commit. Callers have already verified target descends from HEAD.
func (r *Repository) fastForward(target plumbing.Hash) error {
	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.Reset(&gogit.ResetOptions{Commit: target, Mode: gogit.HardReset}); err != nil {
		return fmt.Errorf("failed to fast-forward: %w", err)
	}
	return nil
}

func (r *Repository) normalMerge(ctx context.Context, sourceBranch string, target plumbing.Hash) error {
	guard, err := r.newStateGuard(ctx)
	if err != nil {
		return err
	}
	defer guard.clear(ctx)

	message := fmt.Sprintf("Merge branch '%s'", sourceBranch)
	if _, err := r.runner.Run(ctx, "merge", "--no-ff", "-m", message, target.String()); err != nil {
		if paths := r.conflictedPaths(ctx); len(paths) > 0 {
			return gitliteerrors.NewMergeConflictError(paths)
		}
		return err
	}
	guard.disarm()
	return nil
}
