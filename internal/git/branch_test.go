package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/testhelpers"
)

func TestListBranches(t *testing.T) {
	t.Run("marks the checked-out branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		require.NoError(t, scene.Repo.CreateBranch("feature"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		branches, err := repo.ListBranches()
		require.NoError(t, err)
		require.Len(t, branches, 2)
		require.Equal(t, "feature", branches[0].Name)
		require.False(t, branches[0].IsCurrent)
		require.Equal(t, "main", branches[1].Name)
		require.True(t, branches[1].IsCurrent)
	})

	t.Run("includes remote-tracking branches after locals", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		branches, err := repo.ListBranches()
		require.NoError(t, err)
		require.Len(t, branches, 2)
		require.False(t, branches[0].IsRemote)
		require.True(t, branches[1].IsRemote)
		require.Equal(t, "origin/main", branches[1].Name)
	})
}

func TestCreateBranch(t *testing.T) {
	t.Run("creates a branch at HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.CreateBranch("feature"))

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		target, err := scene.Repo.GetRevision("feature")
		require.NoError(t, err)
		require.Equal(t, head, target)

		current, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "main", current, "creating must not switch branches")
	})

	t.Run("creates a branch at an older commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CreateChangeAndCommit("first", "a"); err != nil {
				return err
			}
			return s.Repo.CreateChangeAndCommit("second", "b")
		})

		first, err := scene.Repo.GetRevision("HEAD~1")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.CreateBranchFromCommit("old", first))

		target, err := scene.Repo.GetRevision("old")
		require.NoError(t, err)
		require.Equal(t, first, target)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.ErrorIs(t, repo.CreateBranch("   "), gitliteerrors.ErrEmptyName)
	})

	t.Run("existing name is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.Error(t, repo.CreateBranch("main"))
	})

	t.Run("unborn HEAD is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.ErrorIs(t, repo.CreateBranch("feature"), gitliteerrors.ErrHeadUnborn)
	})
}

func TestDeleteBranch(t *testing.T) {
	t.Run("deletes a non-current branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		require.NoError(t, scene.Repo.CreateBranch("feature"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteBranch("feature"))

		branches, err := scene.Repo.GetLocalBranches()
		require.NoError(t, err)
		require.Equal(t, []string{"main"}, branches)
	})

	t.Run("refuses to delete the current branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.ErrorIs(t, repo.DeleteBranch("main"), gitliteerrors.ErrDeleteCurrentBranch)
	})

	t.Run("unknown branch is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.ErrorIs(t, repo.DeleteBranch("ghost"), gitliteerrors.ErrReferenceNotFound)
	})
}

func TestCheckout(t *testing.T) {
	t.Run("switches branches and updates the worktree", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("file.txt", "main content\n", "initial")
		})
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("file.txt", "feature content\n", "feature change"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.CheckoutBranch("feature"))

		current, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "feature", current)

		content, err := scene.Repo.ReadFile("file.txt")
		require.NoError(t, err)
		require.Equal(t, "feature content\n", content)
	})

	t.Run("unknown branch is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.ErrorIs(t, repo.CheckoutBranch("ghost"), gitliteerrors.ErrReferenceNotFound)
	})

	t.Run("checkout commit detaches HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CreateChangeAndCommit("first", "a"); err != nil {
				return err
			}
			return s.Repo.CreateChangeAndCommit("second", "b")
		})

		first, err := scene.Repo.GetRevision("HEAD~1")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.CheckoutCommit(first))

		current, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Empty(t, current, "HEAD should be detached")

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, first, head)
	})
}
