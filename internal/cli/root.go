// Package cli wires the gitlite commands to the engine.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/internal/output"
)

var (
	repoPath string
	splog    *output.Splog
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gitlite",
		Short:   "Gitlite is a small, fast command line client for everyday git workflows",
		Version: version,
		Long: `Gitlite is a small, fast command line client for everyday git workflows:
browsing history, staging and committing, branching, merging, stashing and
syncing with remotes.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			splog = newSplog()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if splog != nil {
				_ = splog.Close()
			}
		},
	}

	rootCmd.SetVersionTemplate("gitlite {{.Version}} (" + commit + ", " + date + ")\n")
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "C", ".", "Path to the repository (or any directory inside it)")

	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStageCmd())
	rootCmd.AddCommand(newUnstageCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newBranchCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCherryPickCmd())
	rootCmd.AddCommand(newRevertCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newRemoteCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newSyncStatusCmd())
	rootCmd.AddCommand(newStashCmd())

	return rootCmd
}

// newSplog builds the logger, mirroring output to a rotating file under the
// user cache directory when one is available.
func newSplog() *output.Splog {
	logPath := ""
	if cacheDir, err := os.UserCacheDir(); err == nil {
		logPath = filepath.Join(cacheDir, "gitlite", "gitlite.log")
	}
	s, err := output.NewSplogWithFile(logPath)
	if err != nil {
		return output.NewSplog()
	}
	return s
}

// openRepo opens the repository the command should act on and wires the
// notifier.
func openRepo() (*git.Repository, error) {
	repo, err := git.OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}
	repo.SetNotifier(splog)
	return repo, nil
}
