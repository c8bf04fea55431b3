package cli

import (
	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/output"
)

// newBranchCmd creates the branch command group
func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List, create and delete branches",
	}

	cmd.AddCommand(newBranchListCmd())
	cmd.AddCommand(newBranchCreateCmd())
	cmd.AddCommand(newBranchDeleteCmd())

	return cmd
}

func newBranchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List local and remote branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			branches, err := repo.ListBranches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				if b.IsRemote {
					splog.Page(output.ColorDim(b.Name) + "\n")
					continue
				}
				splog.Page(output.ColorBranchName(b.Name, b.IsCurrent) + "\n")
			}
			return nil
		},
	}
}

func newBranchCreateCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch at HEAD or at a given commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if from != "" {
				return repo.CreateBranchFromCommit(args[0], from)
			}
			return repo.CreateBranch(args[0])
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Commit to branch from instead of HEAD")

	return cmd
}

func newBranchDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a local branch",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.DeleteBranch(args[0])
		},
	}
}

// newCheckoutCmd creates the checkout command
func newCheckoutCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:     "checkout <branch|commit>",
		Aliases: []string{"co"},
		Short:   "Switch to a branch, or detach onto a commit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if detach {
				return repo.CheckoutCommit(args[0])
			}
			return repo.CheckoutBranch(args[0])
		},
	}

	cmd.Flags().BoolVar(&detach, "detach", false, "Treat the argument as a commit and detach HEAD")

	return cmd
}
