package git

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// AllBranches is the sentinel reference meaning "every local branch".
const AllBranches = "all"

// Commit is one entry of the history view.
type Commit struct {
	Hash    string
	Author  string
	Message string
	Date    int64
	Parents []string
}

// Commits walks commit ancestry starting at reference and returns at most
// limit commits in topological order, most-recent-first among commits whose
// relative order the graph leaves open.
//
// reference may be empty (current HEAD), AllBranches, or any revision a
// ref/branch name resolves to.
func (r *Repository) Commits(limit int, reference string) ([]Commit, error) {
	starts, err := r.logStarts(reference)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(starts) == 0 {
		return []Commit{}, nil
	}

	nodes, err := r.collectReachable(starts)
	if err != nil {
		return nil, err
	}

	// Kahn's algorithm over the reachable subgraph. A commit becomes ready
	// once every reachable child has been emitted, which guarantees no
	// commit precedes any of its ancestors in the result.
	ready := &commitQueue{}
	heap.Init(ready)
	for _, n := range nodes {
		if n.pendingChildren == 0 {
			heap.Push(ready, n)
		}
	}

	commits := make([]Commit, 0, min(limit, len(nodes)))
	for ready.Len() > 0 && len(commits) < limit {
		n := heap.Pop(ready).(*logNode)
		commits = append(commits, newLogCommit(n.commit))
		for _, parentHash := range n.commit.ParentHashes {
			parent, ok := nodes[parentHash]
			if !ok {
				continue
			}
			parent.pendingChildren--
			if parent.pendingChildren == 0 {
				heap.Push(ready, parent)
			}
		}
	}
	return commits, nil
}

// logStarts resolves the traversal entry points. An unborn HEAD yields no
// entry points rather than an error so fresh repositories list as empty.
func (r *Repository) logStarts(reference string) ([]plumbing.Hash, error) {
	switch reference {
	case "":
		state, head, err := r.headState()
		if err != nil {
			return nil, err
		}
		if state == HeadUnborn {
			return nil, nil
		}
		return []plumbing.Hash{head.Hash()}, nil
	case AllBranches:
		branches, err := r.Repository.Branches()
		if err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		var starts []plumbing.Hash
		err = branches.ForEach(func(ref *plumbing.Reference) error {
			starts = append(starts, ref.Hash())
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to iterate branches: %w", err)
		}
		return starts, nil
	default:
		hash, err := r.ResolveRevision(plumbing.Revision(reference))
		if err != nil {
			return nil, gitliteerrors.NewReferenceNotFoundError(reference)
		}
		return []plumbing.Hash{*hash}, nil
	}
}

type logNode struct {
	commit          *object.Commit
	pendingChildren int
}

func (r *Repository) collectReachable(starts []plumbing.Hash) (map[plumbing.Hash]*logNode, error) {
	nodes := make(map[plumbing.Hash]*logNode)
	stack := append([]plumbing.Hash(nil), starts...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := nodes[h]; seen {
			continue
		}
		commit, err := r.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("failed to load commit %s: %w", h, err)
		}
		nodes[h] = &logNode{commit: commit}
		stack = append(stack, commit.ParentHashes...)
	}
	for _, n := range nodes {
		for _, parentHash := range n.commit.ParentHashes {
			if parent, ok := nodes[parentHash]; ok {
				parent.pendingChildren++
			}
		}
	}
	return nodes, nil
}

func newLogCommit(c *object.Commit) Commit {
	author := c.Author.Name
	if author == "" {
		author = c.Author.Email
	}
	if author == "" {
		author = "Unknown"
	}

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Hash:    c.Hash.String(),
		Author:  author,
		Message: strings.TrimSpace(c.Message),
		Date:    c.Committer.When.Unix(),
		Parents: parents,
	}
}

// commitQueue orders ready commits newest-first, breaking timestamp ties by
// hash so the output is deterministic.
type commitQueue []*logNode

func (q commitQueue) Len() int { return len(q) }

func (q commitQueue) Less(i, j int) bool {
	ti, tj := q[i].commit.Committer.When, q[j].commit.Committer.When
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return q[i].commit.Hash.String() < q[j].commit.Hash.String()
}

func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *commitQueue) Push(x any) { *q = append(*q, x.(*logNode)) }

func (q *commitQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
