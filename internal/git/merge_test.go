package git_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/testhelpers"
)

func TestMergeBranch(t *testing.T) {
	t.Run("fast-forwards without creating a merge commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("base.txt", "base\n", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature\n", "feature work"))
		featureTip, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.MergeBranch(context.Background(), "feature"))

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, featureTip, head, "fast-forward moves HEAD to the source tip")

		content, err := scene.Repo.ReadFile("feature.txt")
		require.NoError(t, err)
		require.Equal(t, "feature\n", content)
	})

	t.Run("already merged source is a no-op", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("base.txt", "base\n", "base")
		})
		require.NoError(t, scene.Repo.CreateBranch("old"))
		require.NoError(t, scene.Repo.CommitFile("more.txt", "more\n", "more work"))
		headBefore, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.MergeBranch(context.Background(), "old"))

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, headBefore, head)
	})

	t.Run("diverged branches produce a merge commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("base.txt", "base\n", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature\n", "feature work"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main\n", "main work"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.MergeBranch(context.Background(), "feature"))

		parents, err := scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%P")
		require.NoError(t, err)
		require.Len(t, strings.Fields(parents), 2, "merge commit has two parents")

		featureContent, err := scene.Repo.ReadFile("feature.txt")
		require.NoError(t, err)
		require.Equal(t, "feature\n", featureContent)
		mainContent, err := scene.Repo.ReadFile("main.txt")
		require.NoError(t, err)
		require.Equal(t, "main\n", mainContent)
	})

	t.Run("same-line conflict aborts cleanly", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("file.txt", "base\n", "base")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("file.txt", "feature version\n", "feature edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("file.txt", "main version\n", "main edit"))
		headBefore, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.MergeBranch(context.Background(), "feature")
		require.ErrorIs(t, err, gitliteerrors.ErrMergeConflict)

		var conflictErr *gitliteerrors.MergeConflictError
		require.True(t, errors.As(err, &conflictErr))
		require.Equal(t, []string{"file.txt"}, conflictErr.Paths)

		// no merge commit was created and the worktree is clean
		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, headBefore, head)

		entries, err := repo.Status()
		require.NoError(t, err)
		require.Empty(t, entries)

		// branches merge fine after resolving out of band
		require.NoError(t, scene.Repo.CreateChangeAndCommit("after conflict", "after"))
	})

	t.Run("unknown source branch is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.MergeBranch(context.Background(), "ghost")
		require.ErrorIs(t, err, gitliteerrors.ErrReferenceNotFound)
	})
}

