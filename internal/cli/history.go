package cli

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/git"
)

// newResetCmd creates the reset command
func newResetCmd() *cobra.Command {
	var (
		mode  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			resetMode := git.ResetMode(mode)
			if resetMode == git.ResetHard && !force {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "A hard reset discards all local changes. Continue?",
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}
			return repo.Reset(args[0], resetMode)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "mixed", "Reset mode: soft, mixed or hard")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the hard reset confirmation prompt")

	return cmd
}

// newCherryPickCmd creates the cherry-pick command
func newCherryPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cherry-pick <commit>",
		Short: "Apply a commit's change on top of the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			hash, err := repo.CherryPick(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			splog.Info("cherry-picked as %s", hash[:8])
			return nil
		},
	}
}

// newRevertCmd creates the revert command
func newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <commit>",
		Short: "Apply the inverse of a commit on top of the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			hash, err := repo.Revert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			splog.Info("reverted as %s", hash[:8])
			return nil
		},
	}
}

// newMergeCmd creates the merge command
func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if err := repo.MergeBranch(cmd.Context(), args[0]); err != nil {
				return err
			}
			branch, err := repo.CurrentBranch()
			if err != nil {
				return err
			}
			splog.Info("merged %s into %s", args[0], branch)
			return nil
		},
	}
}
