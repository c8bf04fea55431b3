package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scene is a temporary repository plus room for siblings (bare remotes). The
// directory is removed when the test finishes.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// NewScene creates a fresh repository and runs the setup function against it.
func NewScene(t *testing.T, setup func(s *Scene) error) *Scene {
	t.Helper()

	dir := t.TempDir()
	repo, err := NewGitRepo(filepath.Join(dir, "repo"))
	require.NoError(t, err)

	scene := &Scene{Dir: dir, Repo: repo}
	if setup != nil {
		require.NoError(t, setup(scene))
	}
	return scene
}
