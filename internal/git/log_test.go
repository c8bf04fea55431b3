package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/testhelpers"
)

func TestCommits(t *testing.T) {
	t.Run("returns commits newest first", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CreateChangeAndCommit("first", "a"); err != nil {
				return err
			}
			if err := s.Repo.CreateChangeAndCommit("second", "b"); err != nil {
				return err
			}
			return s.Repo.CreateChangeAndCommit("third", "c")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		commits, err := repo.Commits(50, "")
		require.NoError(t, err)
		require.Len(t, commits, 3)
		require.Equal(t, "third", commits[0].Message)
		require.Equal(t, "second", commits[1].Message)
		require.Equal(t, "first", commits[2].Message)
	})

	t.Run("never emits a commit before its descendant", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("base", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("feature work", "feat"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("main work", "main"))
		require.NoError(t, scene.Repo.RunGitCommand("merge", "--no-ff", "-m", "merge feature", "feature"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		commits, err := repo.Commits(50, "")
		require.NoError(t, err)
		require.Len(t, commits, 4)

		position := map[string]int{}
		for i, c := range commits {
			position[c.Hash] = i
		}
		for _, c := range commits {
			for _, parent := range c.Parents {
				require.Greater(t, position[parent], position[c.Hash],
					"parent must come after child in the listing")
			}
		}
		require.Equal(t, "merge feature", commits[0].Message)
		require.Equal(t, "base", commits[3].Message)
	})

	t.Run("respects the limit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			for _, msg := range []string{"one", "two", "three", "four", "five"} {
				if err := s.Repo.CreateChangeAndCommit(msg, msg); err != nil {
					return err
				}
			}
			return nil
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		commits, err := repo.Commits(2, "")
		require.NoError(t, err)
		require.Len(t, commits, 2)
		require.Equal(t, "five", commits[0].Message)
	})

	t.Run("walks a named branch without checking it out", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("base", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("on feature", "feat"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		commits, err := repo.Commits(50, "feature")
		require.NoError(t, err)
		require.Len(t, commits, 2)
		require.Equal(t, "on feature", commits[0].Message)
	})

	t.Run("all branches includes commits unreachable from HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("base", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("on feature", "feat"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		fromHead, err := repo.Commits(50, "")
		require.NoError(t, err)
		require.Len(t, fromHead, 1)

		all, err := repo.Commits(50, git.AllBranches)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("unknown reference fails", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("base", "base")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		_, err = repo.Commits(50, "no-such-branch")
		require.ErrorIs(t, err, gitliteerrors.ErrReferenceNotFound)
	})

	t.Run("empty repository lists as empty", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		commits, err := repo.Commits(50, "")
		require.NoError(t, err)
		require.Empty(t, commits)
	})
}

func TestOpenRepository(t *testing.T) {
	t.Run("rejects a directory that is not a repository", func(t *testing.T) {
		_, err := git.OpenRepository(t.TempDir())
		require.ErrorIs(t, err, gitliteerrors.ErrRepositoryNotFound)
	})

	t.Run("opens from a subdirectory", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CreateChangeAndCommit("base", "base"); err != nil {
				return err
			}
			return s.Repo.WriteFile("sub/nested.txt", "hello")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir + "/sub")
		require.NoError(t, err)
		require.Equal(t, scene.Repo.Dir, repo.Root())
	})
}
