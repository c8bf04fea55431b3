package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// StashEntry is one saved stash, newest first (index 0 is the most recent).
type StashEntry struct {
	Index   int
	Message string
	Author  string
	Date    int64
}

// StashSave stashes all local changes including untracked files, leaving the
// worktree clean. An empty worktree is rejected rather than silently
// creating nothing.
func (r *Repository) StashSave(ctx context.Context, message string) error {
	entries, err := r.Status()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return gitliteerrors.ErrEmptyStash
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = "WIP"
	}
	if _, err := r.runner.Run(ctx, "stash", "push", "--include-untracked", "-m", message); err != nil {
		return err
	}
	return nil
}

// StashList enumerates the stash, newest first.
func (r *Repository) StashList(ctx context.Context) ([]StashEntry, error) {
	lines, err := r.runner.RunLines(ctx, "stash", "list", "--format=%an%x09%at%x09%gs")
	if err != nil {
		return nil, err
	}

	entries := make([]StashEntry, 0, len(lines))
	for i, line := range lines {
		entry := StashEntry{Index: i, Author: "unknown"}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) == 3 {
			if parts[0] != "" {
				entry.Author = parts[0]
			}
			if ts, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
				entry.Date = ts
			}
			entry.Message = parts[2]
		} else {
			entry.Message = line
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// StashApply re-applies a stash entry onto the worktree, keeping the entry.
// A conflicting apply reports the conflict and still keeps the entry so
// nothing is lost.
func (r *Repository) StashApply(ctx context.Context, index int) error {
	if err := r.validateStashIndex(ctx, index); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "stash", "apply", fmt.Sprintf("stash@{%d}", index)); err != nil {
		var cmdErr *gitliteerrors.GitCommandError
		if errors.As(err, &cmdErr) {
			out := cmdErr.Stdout + cmdErr.Stderr
			if strings.Contains(strings.ToLower(out), "conflict") || len(r.conflictedPaths(ctx)) > 0 {
				return fmt.Errorf("%w: stash@{%d}", gitliteerrors.ErrStashApplyConflict, index)
			}
		}
		return err
	}
	return nil
}

// StashDrop removes a stash entry without applying it.
func (r *Repository) StashDrop(ctx context.Context, index int) error {
	if err := r.validateStashIndex(ctx, index); err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "stash", "drop", fmt.Sprintf("stash@{%d}", index)); err != nil {
		return err
	}
	return nil
}

func (r *Repository) validateStashIndex(ctx context.Context, index int) error {
	entries, err := r.StashList(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: stash@{%d}", gitliteerrors.ErrInvalidStashIndex, index)
	}
	return nil
}
