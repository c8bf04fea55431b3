// Package errors provides sentinel errors and custom error types for the gitlite engine.
// Every operation failure carries a machine-readable kind; callers branch with
// errors.Is() and errors.As() instead of matching message strings.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup failures
var (
	// ErrRepositoryNotFound indicates that the path is not a git repository
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrReferenceNotFound indicates that a named reference does not resolve
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrCommitNotFound indicates that a commit identifier does not resolve
	ErrCommitNotFound = errors.New("commit not found")

	// ErrInvalidRevision indicates a malformed revision identifier
	ErrInvalidRevision = errors.New("invalid revision")
)

// Precondition guards, recoverable by the caller correcting local state
var (
	// ErrDirtyWorktree indicates uncommitted changes block the operation
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")

	// ErrDetachedHead indicates the operation requires a checked-out branch
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrHeadUnborn indicates the repository has no commits yet
	ErrHeadUnborn = errors.New("HEAD is unborn")
)

// Divergence conditions requiring a user decision, never auto-resolved
var (
	// ErrNonFastForward indicates local and remote history diverged
	ErrNonFastForward = errors.New("non-fast-forward")

	// ErrRejected indicates the remote rejected a ref update
	ErrRejected = errors.New("push rejected")

	// ErrMergeConflict indicates conflicting changes; see MergeConflictError
	ErrMergeConflict = errors.New("merge conflict")
)

// Transport failures, safe to retry after fixing credentials or connectivity
var (
	// ErrAuth indicates the remote refused the supplied credentials
	ErrAuth = errors.New("authentication failed")

	// ErrNetwork indicates a transport-level failure (network/TLS/SSH)
	ErrNetwork = errors.New("network error")
)

// Input and state validation
var (
	// ErrDeleteCurrentBranch indicates an attempt to delete the checked-out branch
	ErrDeleteCurrentBranch = errors.New("cannot delete current branch")

	// ErrEmptyName indicates a blank branch name
	ErrEmptyName = errors.New("name is required")

	// ErrEmptyMessage indicates a blank commit message
	ErrEmptyMessage = errors.New("commit message is required")

	// ErrNothingStaged indicates the index has no changes to commit
	ErrNothingStaged = errors.New("no staged changes")

	// ErrEmptyStash indicates there are no local changes to stash
	ErrEmptyStash = errors.New("no local changes to stash")

	// ErrInvalidStashIndex indicates the stash index no longer exists
	ErrInvalidStashIndex = errors.New("stash index does not exist")

	// ErrStashApplyConflict indicates a stash apply conflicted with the worktree
	ErrStashApplyConflict = errors.New("stash apply conflict")

	// ErrMergeCommitUnsupported indicates a merge commit cannot be replayed
	ErrMergeCommitUnsupported = errors.New("merge commits cannot be replayed")
)

// ErrUnhandledMergeState indicates a backend contract violation; it should
// never occur with well-formed inputs and is not recoverable.
var ErrUnhandledMergeState = errors.New("unhandled merge state")

// MergeConflictError reports the paths left conflicting by a merge,
// cherry-pick or revert. The operation that produced it has already cleared
// any transient merge state.
type MergeConflictError struct {
	Paths []string
}

func (e *MergeConflictError) Error() string {
	if len(e.Paths) == 0 {
		return "merge conflicts detected"
	}
	return fmt.Sprintf("merge conflicts detected in %d file(s): %s",
		len(e.Paths), strings.Join(e.Paths, ", "))
}

// Is returns true if the target error is ErrMergeConflict
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// NewMergeConflictError creates a new MergeConflictError
func NewMergeConflictError(paths []string) *MergeConflictError {
	return &MergeConflictError{Paths: paths}
}

// ReferenceNotFoundError reports which reference failed to resolve
type ReferenceNotFoundError struct {
	Name string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("reference %q does not exist", e.Name)
}

// Is returns true if the target error is ErrReferenceNotFound
func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// NewReferenceNotFoundError creates a new ReferenceNotFoundError
func NewReferenceNotFoundError(name string) *ReferenceNotFoundError {
	return &ReferenceNotFoundError{Name: name}
}

// PushRejectedError carries the remote's reason for refusing a ref update
type PushRejectedError struct {
	Ref    string
	Status string
}

func (e *PushRejectedError) Error() string {
	return fmt.Sprintf("push of %s rejected: %s", e.Ref, e.Status)
}

// Is returns true if the target error is ErrRejected
func (e *PushRejectedError) Is(target error) bool {
	return target == ErrRejected
}

// NewPushRejectedError creates a new PushRejectedError
func NewPushRejectedError(ref, status string) *PushRejectedError {
	return &PushRejectedError{Ref: ref, Status: status}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
