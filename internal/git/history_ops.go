package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// CherryPick replays a commit's change on top of the current branch and
// commits it, returning the new commit hash. Merge commits are rejected; a
// conflict leaves the worktree clean and reports the conflicted paths.
func (r *Repository) CherryPick(ctx context.Context, commitID string) (string, error) {
	return r.replay(ctx, commitID, "cherry-pick")
}

// Revert applies the inverse of a commit's change on top of the current
// branch and commits it, returning the new commit hash. Same constraints as
// CherryPick.
func (r *Repository) Revert(ctx context.Context, commitID string) (string, error) {
	return r.replay(ctx, commitID, "revert")
}

func (r *Repository) replay(ctx context.Context, commitID, op string) (string, error) {
	if _, err := r.ensureBranchHead(); err != nil {
		return "", err
	}
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return "", err
	}
	if commit.NumParents() > 1 {
		return "", fmt.Errorf("%w: %s", gitliteerrors.ErrMergeCommitUnsupported, commitID)
	}

	guard, err := r.newStateGuard(ctx)
	if err != nil {
		return "", err
	}
	defer guard.clear(ctx)

	args := []string{op, commit.Hash.String()}
	if op == "revert" {
		args = []string{op, "--no-edit", commit.Hash.String()}
	}
	if _, err := r.runner.Run(ctx, args...); err != nil {
		if paths := r.conflictedPaths(ctx); len(paths) > 0 {
			return "", gitliteerrors.NewMergeConflictError(paths)
		}
		return "", err
	}
	guard.disarm()

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// conflictedPaths lists paths in the unmerged index state. An empty slice
// means the failure was not a content conflict.
func (r *Repository) conflictedPaths(ctx context.Context) []string {
	lines, err := r.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil
	}
	return lines
}

// stateGuard clears transient sequencer state (MERGE_HEAD, CHERRY_PICK_HEAD,
// REVERT_HEAD) so a failed operation never strands the repository mid-merge.
type stateGuard struct {
	r      *Repository
	gitDir string
	armed  bool
}

func (r *Repository) newStateGuard(ctx context.Context) (*stateGuard, error) {
	gitDir, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, err
	}
	return &stateGuard{r: r, gitDir: gitDir, armed: true}, nil
}

func (g *stateGuard) disarm() {
	g.armed = false
}

// clear aborts whatever sequencer left a marker behind. Abort failures are
// swallowed: the caller already has the primary error to report.
func (g *stateGuard) clear(ctx context.Context) {
	if !g.armed {
		return
	}
	for marker, op := range map[string]string{
		"CHERRY_PICK_HEAD": "cherry-pick",
		"REVERT_HEAD":      "revert",
		"MERGE_HEAD":       "merge",
	} {
		if _, err := os.Stat(filepath.Join(g.gitDir, marker)); err == nil {
			_, _ = g.r.runner.Run(ctx, op, "--abort")
		}
	}
}
