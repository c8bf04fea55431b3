package git

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// Branch is a local or remote branch head. Local and remote names live in
// disjoint namespaces; Target is empty for an unborn branch.
type Branch struct {
	Name      string
	IsCurrent bool
	IsRemote  bool
	Target    string
}

// ListBranches returns local branches followed by remote-tracking branches,
// each sorted by name. Only the checked-out local branch carries IsCurrent.
func (r *Repository) ListBranches() ([]Branch, error) {
	var current string
	if state, head, err := r.headState(); err != nil {
		return nil, err
	} else if state == HeadOnBranch {
		current = head.Name().Short()
	}

	var locals []Branch
	branches, err := r.Repository.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		locals = append(locals, Branch{
			Name:      name,
			IsCurrent: name == current,
			Target:    ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	var remotes []Branch
	refs, err := r.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() || ref.Type() != plumbing.HashReference {
			return nil
		}
		remotes = append(remotes, Branch{
			Name:     strings.TrimPrefix(ref.Name().String(), "refs/remotes/"),
			IsRemote: true,
			Target:   ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	sort.Slice(locals, func(i, j int) bool { return locals[i].Name < locals[j].Name })
	sort.Slice(remotes, func(i, j int) bool { return remotes[i].Name < remotes[j].Name })
	return append(locals, remotes...), nil
}

// CreateBranch points a new local branch at the current HEAD commit.
func (r *Repository) CreateBranch(name string) error {
	head, err := r.ensureBranchHead()
	if err != nil {
		return err
	}
	return r.createBranchAt(name, head.Hash())
}

// CreateBranchFromCommit points a new local branch at an explicit commit.
func (r *Repository) CreateBranchFromCommit(name, commitID string) error {
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	return r.createBranchAt(name, commit.Hash)
}

func (r *Repository) createBranchAt(name string, target plumbing.Hash) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return gitliteerrors.ErrEmptyName
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.Reference(refName, false); err == nil {
		return fmt.Errorf("branch %q already exists", name)
	}
	if err := r.Storer.SetReference(plumbing.NewHashReference(refName, target)); err != nil {
		return fmt.Errorf("failed to create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes a local branch ref. The checked-out branch cannot be
// deleted.
func (r *Repository) DeleteBranch(name string) error {
	if state, head, err := r.headState(); err != nil {
		return err
	} else if state == HeadOnBranch && head.Name().Short() == name {
		return gitliteerrors.ErrDeleteCurrentBranch
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.Reference(refName, false); err != nil {
		return gitliteerrors.NewReferenceNotFoundError(name)
	}
	if err := r.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("failed to delete branch %q: %w", name, err)
	}
	return nil
}

// CheckoutBranch performs a safe worktree checkout to the branch's tree and
// repoints HEAD at the branch ref. Conflicting local modifications abort the
// checkout.
func (r *Repository) CheckoutBranch(name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.Reference(refName, true); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitliteerrors.NewReferenceNotFoundError(name)
		}
		return fmt.Errorf("failed to resolve branch %q: %w", name, err)
	}

	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.Checkout(&gogit.CheckoutOptions{Branch: refName}); err != nil {
		return fmt.Errorf("failed to checkout branch %q: %w", name, err)
	}
	return nil
}

// CheckoutCommit performs a safe worktree checkout to the commit's tree and
// leaves HEAD detached at the commit.
func (r *Repository) CheckoutCommit(commitID string) error {
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}

	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.Checkout(&gogit.CheckoutOptions{Hash: commit.Hash}); err != nil {
		return fmt.Errorf("failed to checkout commit %s: %w", commitID, err)
	}
	return nil
}
