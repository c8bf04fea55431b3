package git

import (
	"context"
	"fmt"
	"strings"

	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// diffContextLines is the fixed context window around changed lines.
const diffContextLines = 3

// Diff line kinds.
const (
	DiffLineContext = "context"
	DiffLineAdd     = "add"
	DiffLineDelete  = "delete"
)

// DiffLine is a single line of a hunk. Exactly one of OldLineno/NewLineno is
// zero for added/deleted lines; context lines carry both.
type DiffLine struct {
	Kind      string
	Content   string
	OldLineno int
	NewLineno int
}

// DiffHunk is a run of changed lines plus surrounding context.
type DiffHunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []DiffLine
}

// FileDiff collects every hunk touching one path.
type FileDiff struct {
	Path     string
	IsBinary bool
	Hunks    []DiffHunk
}

// DiffCommit computes the tree diff between a commit and its first parent,
// or against the empty tree for a root commit. Deltas touching the same path
// are merged into a single FileDiff.
func (r *Repository) DiffCommit(commitID string) ([]FileDiff, error) {
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("failed to get parent tree: %w", err)
		}
	}

	ctx := context.Background()
	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := []FileDiff{}
	byPath := map[string]int{}
	for _, change := range changes {
		patch, err := change.PatchContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute patch: %w", err)
		}
		for _, fp := range patch.FilePatches() {
			path := filePatchPath(fp)
			idx, ok := byPath[path]
			if !ok {
				idx = len(files)
				byPath[path] = idx
				files = append(files, FileDiff{Path: path})
			}
			if fp.IsBinary() {
				files[idx].IsBinary = true
				continue
			}
			files[idx].Hunks = append(files[idx].Hunks, buildHunks(fp.Chunks())...)
		}
	}
	return files, nil
}

func filePatchPath(fp fdiff.FilePatch) string {
	from, to := fp.Files()
	if to != nil {
		return to.Path()
	}
	if from != nil {
		return from.Path()
	}
	return "unknown"
}

// buildHunks windows a full file patch into hunks with diffContextLines of
// context, merging changes whose separating context would overlap.
func buildHunks(chunks []fdiff.Chunk) []DiffHunk {
	lines := chunkLines(chunks)
	n := len(lines)

	// prefix counts of old/new lines, used to anchor hunks that have no
	// lines on one side (pure insertions or deletions)
	oldBefore := make([]int, n+1)
	newBefore := make([]int, n+1)
	for i, ln := range lines {
		oldBefore[i+1] = oldBefore[i]
		newBefore[i+1] = newBefore[i]
		if ln.OldLineno > 0 {
			oldBefore[i+1]++
		}
		if ln.NewLineno > 0 {
			newBefore[i+1]++
		}
	}

	var hunks []DiffHunk
	i := 0
	prevEnd := 0
	for i < n {
		if lines[i].Kind == DiffLineContext {
			i++
			continue
		}

		start := i - diffContextLines
		if start < prevEnd {
			start = prevEnd
		}
		if start < 0 {
			start = 0
		}

		last := i
		j := i + 1
		for j < n {
			if lines[j].Kind != DiffLineContext {
				last = j
				j++
				continue
			}
			k := j
			for k < n && lines[k].Kind == DiffLineContext {
				k++
			}
			if k < n && k-j <= 2*diffContextLines {
				j = k
				continue
			}
			break
		}

		end := last + 1 + diffContextLines
		if end > n {
			end = n
		}

		hunks = append(hunks, newHunk(lines[start:end], oldBefore[start], newBefore[start]))
		prevEnd = end
		i = end
	}
	return hunks
}

func newHunk(window []DiffLine, oldBefore, newBefore int) DiffHunk {
	h := DiffHunk{Lines: window}
	for _, ln := range window {
		if ln.OldLineno > 0 {
			h.OldLines++
		}
		if ln.NewLineno > 0 {
			h.NewLines++
		}
	}
	if h.OldLines > 0 {
		h.OldStart = oldBefore + 1
	} else {
		h.OldStart = oldBefore
	}
	if h.NewLines > 0 {
		h.NewStart = newBefore + 1
	} else {
		h.NewStart = newBefore
	}
	return h
}

// chunkLines flattens go-git's coarse chunks into numbered lines.
func chunkLines(chunks []fdiff.Chunk) []DiffLine {
	var lines []DiffLine
	oldNo, newNo := 1, 1
	for _, chunk := range chunks {
		for _, content := range splitChunk(chunk.Content()) {
			switch chunk.Type() {
			case fdiff.Equal:
				lines = append(lines, DiffLine{Kind: DiffLineContext, Content: content, OldLineno: oldNo, NewLineno: newNo})
				oldNo++
				newNo++
			case fdiff.Add:
				lines = append(lines, DiffLine{Kind: DiffLineAdd, Content: content, NewLineno: newNo})
				newNo++
			case fdiff.Delete:
				lines = append(lines, DiffLine{Kind: DiffLineDelete, Content: content, OldLineno: oldNo})
				oldNo++
			}
		}
	}
	return lines
}

func splitChunk(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
