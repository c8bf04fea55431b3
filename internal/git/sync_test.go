package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/testhelpers"
)

func TestFetchRemote(t *testing.T) {
	t.Run("updates remote-tracking refs", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		// advance the remote through a second clone
		other, err := testhelpers.NewGitRepo(scene.Dir + "/other")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("pull", "origin", "main"))
		require.NoError(t, other.CreateChangeAndCommit("remote work", "remote"))
		require.NoError(t, other.RunGitCommand("push", "origin", "HEAD:main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.FetchRemote(context.Background(), "origin", git.Credentials{}))

		remoteTip, err := scene.Repo.GetRevision("refs/remotes/origin/main")
		require.NoError(t, err)
		otherTip, err := other.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, otherTip, remoteTip)
	})

	t.Run("up-to-date fetch is not an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.FetchRemote(context.Background(), "origin", git.Credentials{}))
		require.NoError(t, repo.FetchRemote(context.Background(), "origin", git.Credentials{}))
	})

	t.Run("unknown remote is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.FetchRemote(context.Background(), "nowhere", git.Credentials{})
		require.ErrorIs(t, err, gitliteerrors.ErrReferenceNotFound)
	})
}

func TestPull(t *testing.T) {
	t.Run("fast-forwards onto the fetched branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		other, err := testhelpers.NewGitRepo(scene.Dir + "/other")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("pull", "origin", "main"))
		require.NoError(t, other.CreateChangeAndCommit("remote work", "remote"))
		require.NoError(t, other.RunGitCommand("push", "origin", "HEAD:main"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.Pull(context.Background(), "origin", git.Credentials{}))

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		otherTip, err := other.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, otherTip, head)
	})

	t.Run("dirty worktree fails before any network traffic", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CreateChangeAndCommit("initial", "init"); err != nil {
				return err
			}
			return s.Repo.WriteFile("dirty.txt", "uncommitted")
		})
		// the remote does not even exist; the dirty check must fire first
		require.NoError(t, scene.Repo.RunGitCommand("remote", "add", "origin", "/nonexistent/path.git"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.Pull(context.Background(), "origin", git.Credentials{})
		require.ErrorIs(t, err, gitliteerrors.ErrDirtyWorktree)
	})

	t.Run("diverged histories are reported, never auto-merged", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		other, err := testhelpers.NewGitRepo(scene.Dir + "/other")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("pull", "origin", "main"))
		require.NoError(t, other.CreateChangeAndCommit("remote work", "remote"))
		require.NoError(t, other.RunGitCommand("push", "origin", "HEAD:main"))

		// local diverges
		require.NoError(t, scene.Repo.CreateChangeAndCommit("local work", "local"))
		headBefore, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.Pull(context.Background(), "origin", git.Credentials{})
		require.ErrorIs(t, err, gitliteerrors.ErrNonFastForward)

		head, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, headBefore, head, "a rejected pull must not move HEAD")
	})
}

func TestPushBranch(t *testing.T) {
	t.Run("uploads the current branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.PushBranch(context.Background(), "origin", git.Credentials{}))

		other, err := testhelpers.NewGitRepo(scene.Dir + "/verify")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("fetch", "origin"))

		remoteTip, err := other.GetRevision("refs/remotes/origin/main")
		require.NoError(t, err)
		localTip, err := scene.Repo.GetCurrentSHA()
		require.NoError(t, err)
		require.Equal(t, localTip, remoteTip)
	})

	t.Run("pushing an already-pushed branch is not an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.PushBranch(context.Background(), "origin", git.Credentials{}))
		require.NoError(t, repo.PushBranch(context.Background(), "origin", git.Credentials{}))
	})

	t.Run("non-fast-forward push is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		other, err := testhelpers.NewGitRepo(scene.Dir + "/other")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("pull", "origin", "main"))
		require.NoError(t, other.CreateChangeAndCommit("remote work", "remote"))
		require.NoError(t, other.RunGitCommand("push", "origin", "HEAD:main"))

		require.NoError(t, scene.Repo.CreateChangeAndCommit("local work", "local"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		err = repo.PushBranch(context.Background(), "origin", git.Credentials{})
		require.ErrorIs(t, err, gitliteerrors.ErrNonFastForward)
	})
}

func TestRemoteSyncStatus(t *testing.T) {
	t.Run("reports ahead and behind counts", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.PushBranch("origin", "main"))

		other, err := testhelpers.NewGitRepo(scene.Dir + "/other")
		require.NoError(t, err)
		require.NoError(t, other.RunGitCommand("remote", "add", "origin", bareDir))
		require.NoError(t, other.RunGitCommand("pull", "origin", "main"))
		require.NoError(t, other.CreateChangeAndCommit("remote one", "r1"))
		require.NoError(t, other.CreateChangeAndCommit("remote two", "r2"))
		require.NoError(t, other.RunGitCommand("push", "origin", "HEAD:main"))

		require.NoError(t, scene.Repo.CreateChangeAndCommit("local work", "local"))

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		require.NoError(t, repo.FetchRemote(context.Background(), "origin", git.Credentials{}))

		status, err := repo.RemoteSyncStatus("origin")
		require.NoError(t, err)
		require.True(t, status.HasUpstream)
		require.Equal(t, "main", status.Branch)
		require.Equal(t, 1, status.Ahead)
		require.Equal(t, 2, status.Behind)
	})

	t.Run("missing upstream yields zero counts", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		repo, err := git.OpenRepository(scene.Repo.Dir)
		require.NoError(t, err)

		status, err := repo.RemoteSyncStatus("origin")
		require.NoError(t, err)
		require.False(t, status.HasUpstream)
		require.Zero(t, status.Ahead)
		require.Zero(t, status.Behind)
	})
}
