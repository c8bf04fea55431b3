package git

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// DefaultRemote is used whenever a remote name is not given.
const DefaultRemote = "origin"

// SyncStatus reports how far the current branch has drifted from its
// remote-tracking counterpart. Counts are zero when HasUpstream is false.
type SyncStatus struct {
	Branch      string
	HasUpstream bool
	Ahead       int
	Behind      int
}

func normalizeRemoteName(remote string) string {
	if strings.TrimSpace(remote) == "" {
		return DefaultRemote
	}
	return remote
}

// FetchRemote downloads objects and updates remote-tracking refs for every
// branch of the remote. Being already up to date is not an error.
func (r *Repository) FetchRemote(ctx context.Context, remote string, creds Credentials) error {
	remote = normalizeRemoteName(remote)
	rem, err := r.Remote(remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return gitliteerrors.NewReferenceNotFoundError(remote)
		}
		return fmt.Errorf("failed to look up remote %q: %w", remote, err)
	}

	remoteURL := ""
	if urls := rem.Config().URLs; len(urls) > 0 {
		remoteURL = urls[0]
	}
	auth, err := r.resolveAuth(ctx, remoteURL, creds)
	if err != nil {
		return err
	}

	err = rem.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remote,
		Auth:       auth,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			r.notify.Info("already up to date")
			return nil
		}
		return classifyTransportError(err)
	}
	return nil
}

// Pull fetches the current branch's counterpart from the remote and
// fast-forwards onto it. Divergent histories are never merged automatically;
// the caller decides how to reconcile.
func (r *Repository) Pull(ctx context.Context, remote string, creds Credentials) error {
	remote = normalizeRemoteName(remote)
	branch, headHash, err := r.preparePull()
	if err != nil {
		return err
	}

	if err := r.FetchRemote(ctx, remote, creds); err != nil {
		return err
	}

	trackingName := plumbing.NewRemoteReferenceName(remote, branch)
	tracking, err := r.Reference(trackingName, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitliteerrors.NewReferenceNotFoundError(trackingName.String())
		}
		return fmt.Errorf("failed to resolve %s: %w", trackingName, err)
	}

	if tracking.Hash() == headHash {
		r.notify.Info("already up to date")
		return nil
	}

	headCommit, err := r.CommitObject(headHash)
	if err != nil {
		return fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	remoteCommit, err := r.CommitObject(tracking.Hash())
	if err != nil {
		return fmt.Errorf("failed to load remote commit: %w", err)
	}

	if isAncestor(remoteCommit, headCommit) {
		r.notify.Info("already up to date")
		return nil
	}
	if isAncestor(headCommit, remoteCommit) {
		return r.fastForward(remoteCommit.Hash)
	}
	return fmt.Errorf("%w: %s and %s have diverged", gitliteerrors.ErrNonFastForward, branch, trackingName.Short())
}

// preparePull validates local state before any network traffic: the worktree
// must be clean and HEAD must be a born branch. Dirtiness is checked first so
// the caller sees the cheapest-to-fix problem.
func (r *Repository) preparePull() (branch string, head plumbing.Hash, err error) {
	entries, err := r.Status()
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	if len(entries) > 0 {
		return "", plumbing.ZeroHash, gitliteerrors.ErrDirtyWorktree
	}

	ref, err := r.ensureBranchHead()
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	return ref.Name().Short(), ref.Hash(), nil
}

// PushBranch uploads the current branch to the remote under the same name.
func (r *Repository) PushBranch(ctx context.Context, remote string, creds Credentials) error {
	remote = normalizeRemoteName(remote)
	head, err := r.ensureBranchHead()
	if err != nil {
		return err
	}
	branch := head.Name().Short()

	rem, err := r.Remote(remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return gitliteerrors.NewReferenceNotFoundError(remote)
		}
		return fmt.Errorf("failed to look up remote %q: %w", remote, err)
	}

	remoteURL := ""
	if urls := rem.Config().URLs; len(urls) > 0 {
		remoteURL = urls[0]
	}
	auth, err := r.resolveAuth(ctx, remoteURL, creds)
	if err != nil {
		return err
	}

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = rem.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			r.notify.Info("already up to date")
			return nil
		}
		if strings.Contains(err.Error(), "non-fast-forward") {
			return fmt.Errorf("%w: remote %s has commits not present locally", gitliteerrors.ErrNonFastForward, branch)
		}
		if err := classifyTransportError(err); errors.Is(err, gitliteerrors.ErrAuth) || errors.Is(err, gitliteerrors.ErrNetwork) {
			return err
		}
		return gitliteerrors.NewPushRejectedError(head.Name().String(), err.Error())
	}
	return nil
}

// RemoteSyncStatus counts how many commits the current branch is ahead of and
// behind its remote-tracking ref. No network traffic; callers fetch first if
// they want fresh counts.
func (r *Repository) RemoteSyncStatus(remote string) (SyncStatus, error) {
	remote = normalizeRemoteName(remote)
	head, err := r.ensureBranchHead()
	if err != nil {
		return SyncStatus{}, err
	}
	branch := head.Name().Short()

	tracking, err := r.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return SyncStatus{Branch: branch}, nil
		}
		return SyncStatus{}, fmt.Errorf("failed to resolve tracking ref: %w", err)
	}

	ahead, err := r.countExclusive(head.Hash(), tracking.Hash())
	if err != nil {
		return SyncStatus{}, err
	}
	behind, err := r.countExclusive(tracking.Hash(), head.Hash())
	if err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{Branch: branch, HasUpstream: true, Ahead: ahead, Behind: behind}, nil
}

// countExclusive counts commits reachable from tip but not from other.
func (r *Repository) countExclusive(tip, other plumbing.Hash) (int, error) {
	otherSet, err := r.reachableSet(other)
	if err != nil {
		return 0, err
	}
	if otherSet[tip] {
		return 0, nil
	}

	start, err := r.CommitObject(tip)
	if err != nil {
		return 0, fmt.Errorf("failed to load commit %s: %w", tip, err)
	}

	count := 0
	iter := object.NewCommitPreorderIter(start, otherSet, nil)
	err = iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk commits: %w", err)
	}
	return count, nil
}

func (r *Repository) reachableSet(from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := map[plumbing.Hash]bool{}
	stack := []plumbing.Hash{from}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[h] {
			continue
		}
		seen[h] = true
		commit, err := r.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("failed to load commit %s: %w", h, err)
		}
		stack = append(stack, commit.ParentHashes...)
	}
	return seen, nil
}

// classifyTransportError maps transport failures onto the auth/network error
// kinds so callers can prompt for credentials or report connectivity.
func classifyTransportError(err error) error {
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return fmt.Errorf("%w: %v", gitliteerrors.ErrAuth, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", gitliteerrors.ErrNetwork, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "ssh: handshake failed"),
		strings.Contains(msg, "ssh: unable to authenticate"):
		return fmt.Errorf("%w: %v", gitliteerrors.ErrAuth, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "tls:"):
		return fmt.Errorf("%w: %v", gitliteerrors.ErrNetwork, err)
	}
	return err
}
