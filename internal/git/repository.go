package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// Repository wraps a go-git repository together with a command runner pinned
// to its worktree root.
type Repository struct {
	*gogit.Repository
	path   string
	runner *CommandRunner
	notify Notifier
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", gitliteerrors.ErrRepositoryNotFound, absPath)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	// absPath may be a subdirectory; resolve the worktree root
	root := absPath
	if w, err := repo.Worktree(); err == nil {
		root = w.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		path:       root,
		runner:     NewCommandRunner(root),
		notify:     nopNotifier{},
	}, nil
}

// Root returns the worktree root of the repository.
func (r *Repository) Root() string {
	return r.path
}

// SetNotifier installs a sink for informational notices. Passing nil
// restores the no-op sink.
func (r *Repository) SetNotifier(n Notifier) {
	if n == nil {
		r.notify = nopNotifier{}
		return
	}
	r.notify = n
}

// HeadState classifies what HEAD currently points at.
type HeadState int

const (
	// HeadOnBranch means HEAD is a symbolic ref to a born local branch
	HeadOnBranch HeadState = iota
	// HeadDetached means HEAD points directly at a commit
	HeadDetached
	// HeadUnborn means the checked-out branch has no commits yet
	HeadUnborn
)

// headState resolves HEAD and reports whether it is a branch, detached, or
// unborn. The reference is nil in the unborn case.
func (r *Repository) headState() (HeadState, *plumbing.Reference, error) {
	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return HeadUnborn, nil, nil
		}
		return HeadUnborn, nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return HeadOnBranch, head, nil
	}
	return HeadDetached, head, nil
}

// ensureBranchHead returns HEAD's branch reference, failing when HEAD is
// detached or unborn. History-mutating operations call this before touching
// anything.
func (r *Repository) ensureBranchHead() (*plumbing.Reference, error) {
	state, head, err := r.headState()
	if err != nil {
		return nil, err
	}
	switch state {
	case HeadDetached:
		return nil, gitliteerrors.ErrDetachedHead
	case HeadUnborn:
		return nil, gitliteerrors.ErrHeadUnborn
	}
	return head, nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.ensureBranchHead()
	if err != nil {
		return "", err
	}
	return head.Name().Short(), nil
}

// resolveCommit turns a commit identifier into a commit object, rejecting
// malformed hashes and unknown objects with distinct error kinds.
func (r *Repository) resolveCommit(commitID string) (*object.Commit, error) {
	if !plumbing.IsHash(commitID) {
		return nil, fmt.Errorf("%w: %q", gitliteerrors.ErrInvalidRevision, commitID)
	}
	commit, err := r.CommitObject(plumbing.NewHash(commitID))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", gitliteerrors.ErrCommitNotFound, commitID)
		}
		return nil, fmt.Errorf("failed to look up commit %s: %w", commitID, err)
	}
	return commit, nil
}

// signature builds the committer identity from scoped git config, falling
// back to "unknown" so read-mostly setups still work.
func (r *Repository) signature() object.Signature {
	name, email := "unknown", "unknown"
	if cfg, err := r.ConfigScoped(config.SystemScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return object.Signature{Name: name, Email: email, When: time.Now()}
}
