package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// ResetMode selects how much local state a reset discards.
type ResetMode string

const (
	// ResetSoft moves the branch ref only; index and worktree are untouched.
	ResetSoft ResetMode = "soft"
	// ResetMixed moves the branch ref and resets the index.
	ResetMixed ResetMode = "mixed"
	// ResetHard moves the branch ref and resets both index and worktree.
	ResetHard ResetMode = "hard"
)

// Reset moves the current branch to the given commit. Hard resets discard
// local modifications without further confirmation; callers prompt first.
func (r *Repository) Reset(commitID string, mode ResetMode) error {
	if _, err := r.ensureBranchHead(); err != nil {
		return err
	}
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}

	var gitMode gogit.ResetMode
	switch mode {
	case ResetSoft:
		gitMode = gogit.SoftReset
	case ResetMixed:
		gitMode = gogit.MixedReset
	case ResetHard:
		gitMode = gogit.HardReset
	default:
		return fmt.Errorf("unknown reset mode %q", mode)
	}

	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.Reset(&gogit.ResetOptions{Commit: commit.Hash, Mode: gitMode}); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", commitID, err)
	}
	return nil
}
