package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/internal/output"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "log [reference]",
		Short: "Show the commit history of a branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			reference := ""
			if len(args) > 0 {
				reference = args[0]
			}
			if all {
				reference = git.AllBranches
			}

			commits, err := repo.Commits(limit, reference)
			if err != nil {
				return err
			}

			for _, c := range commits {
				when := time.Unix(c.Date, 0).Format("2006-01-02 15:04")
				line := fmt.Sprintf("%s  %s  %s  %s",
					output.ColorHash(c.Hash[:8]),
					when,
					output.ColorDim(c.Author),
					firstLine(c.Message))
				splog.Page(line + "\n")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of commits to show")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Walk every local branch instead of HEAD")

	return cmd
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
