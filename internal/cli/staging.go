package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/output"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List staged and unstaged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			entries, err := repo.Status()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				splog.Info("working tree clean")
				return nil
			}

			for _, entry := range entries {
				state := "unstaged"
				if entry.Staged {
					state = "staged"
				}
				line := fmt.Sprintf("%-9s %-9s %s", state, entry.Kind, entry.Path)
				if entry.Staged {
					line = output.ColorAdded(line)
				}
				splog.Page(line + "\n")
			}
			return nil
		},
	}
}

// newStageCmd creates the stage command
func newStageCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stage <path>...",
		Aliases: []string{"add"},
		Short:   "Stage file changes for the next commit",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.StageFiles(args)
		},
	}
}

// newUnstageCmd creates the unstage command
func newUnstageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstage <path>...",
		Short: "Remove file changes from the index, keeping the worktree intact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.UnstageFiles(args)
		},
	}
}

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var (
		message     string
		description string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit the staged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			hash, err := repo.CommitStaged(message, description)
			if err != nil {
				return err
			}
			splog.Info("created commit %s", hash[:8])
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Extended commit description")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
