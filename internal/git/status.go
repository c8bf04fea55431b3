package git

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Status kinds.
const (
	StatusAdded    = "added"
	StatusDeleted  = "deleted"
	StatusRenamed  = "renamed"
	StatusModified = "modified"
)

// StatusEntry is one pending change. A path may yield two entries: one for
// the index-vs-HEAD delta (Staged) and one for the worktree-vs-index delta.
type StatusEntry struct {
	Path   string
	Kind   string
	Staged bool
}

// Status enumerates every path with a pending change. Untracked files are
// included as unstaged additions; ignored files are excluded.
func (r *Repository) Status() ([]StatusEntry, error) {
	w, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var entries []StatusEntry
	for _, path := range paths {
		fs := status[path]
		if kind, ok := stagedKind(fs.Staging); ok {
			entries = append(entries, StatusEntry{Path: path, Kind: kind, Staged: true})
		}
		if kind, ok := unstagedKind(fs.Worktree); ok {
			entries = append(entries, StatusEntry{Path: path, Kind: kind, Staged: false})
		}
	}
	return entries, nil
}

func stagedKind(code gogit.StatusCode) (string, bool) {
	switch code {
	case gogit.Added:
		return StatusAdded, true
	case gogit.Deleted:
		return StatusDeleted, true
	case gogit.Renamed:
		return StatusRenamed, true
	case gogit.Modified, gogit.Copied:
		return StatusModified, true
	}
	return "", false
}

func unstagedKind(code gogit.StatusCode) (string, bool) {
	switch code {
	case gogit.Untracked:
		return StatusAdded, true
	case gogit.Deleted:
		return StatusDeleted, true
	case gogit.Renamed:
		return StatusRenamed, true
	case gogit.Modified:
		return StatusModified, true
	}
	return "", false
}

// StageFiles stages each path, overwriting any existing index entry. Staging
// an already-staged path is a no-op, and staging a deleted path records the
// deletion.
func (r *Repository) StageFiles(paths []string) error {
	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, path := range paths {
		if err := w.AddWithOptions(&gogit.AddOptions{Path: path}); err != nil {
			return fmt.Errorf("failed to stage %q: %w", path, err)
		}
	}
	return nil
}

// UnstageFiles restores each path's index entry from HEAD's tree, or removes
// the entry when HEAD does not contain the path (including the unborn-HEAD
// case, where the index entry is simply cleared).
func (r *Repository) UnstageFiles(paths []string) error {
	idx, err := r.Storer.Index()
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var headTree *object.Tree
	state, head, err := r.headState()
	if err != nil {
		return err
	}
	if state != HeadUnborn {
		commit, err := r.CommitObject(head.Hash())
		if err != nil {
			return fmt.Errorf("failed to load HEAD commit: %w", err)
		}
		headTree, err = commit.Tree()
		if err != nil {
			return fmt.Errorf("failed to load HEAD tree: %w", err)
		}
	}

	for _, path := range paths {
		// removing a path that is not in the index keeps the call idempotent
		_ = idx.Remove(path)

		if headTree == nil {
			continue
		}
		te, err := headTree.FindEntry(path)
		if err != nil {
			continue
		}
		entry := idx.Add(path)
		entry.Hash = te.Hash
		entry.Mode = te.Mode
	}

	if err := r.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
