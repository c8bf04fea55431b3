// Package git implements the gitlite operations engine: history reading,
// staging, branching, merging, history mutation and remote synchronization
// against a local repository.
//
// The heavy lifting is delegated to two backends. go-git provides in-process
// access to the object store, refs, index, worktree and network transports.
// The git binary, driven through CommandRunner, provides the index-level
// three-way merge machinery (merge, cherry-pick, revert) and the stash stack,
// which go-git does not expose.
//
// Operations against a single repository must be serialized by the caller;
// the engine performs no internal locking and no internal concurrency.
package git
