package git

import (
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// CommitStaged writes a tree from the index and creates a commit on the
// current HEAD (rootless when HEAD is unborn), returning the new revision
// identifier. The description, when non-blank, becomes a blank-line-separated
// message body.
func (r *Repository) CommitStaged(message, description string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", gitliteerrors.ErrEmptyMessage
	}

	entries, err := r.Status()
	if err != nil {
		return "", err
	}
	staged := false
	for _, entry := range entries {
		if entry.Staged {
			staged = true
			break
		}
	}
	if !staged {
		return "", gitliteerrors.ErrNothingStaged
	}

	full := strings.TrimSpace(message)
	if body := strings.TrimSpace(description); body != "" {
		full = full + "\n\n" + body
	}

	w, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	sig := r.signature()
	hash, err := w.Commit(full, &gogit.CommitOptions{Author: &sig, Committer: &sig})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}
