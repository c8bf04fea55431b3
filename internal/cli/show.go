package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/git"
	"gitlite.dev/gitlite/internal/output"
)

// newShowCmd creates the show command
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <commit>",
		Short: "Show the changes introduced by a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			files, err := repo.DiffCommit(args[0])
			if err != nil {
				return err
			}

			for _, file := range files {
				splog.Page(output.ColorHash(file.Path) + "\n")
				if file.IsBinary {
					splog.Page(output.ColorDim("  (binary file)") + "\n")
					continue
				}
				for _, hunk := range file.Hunks {
					header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
						hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)
					splog.Page(output.ColorConflict(header) + "\n")
					for _, line := range hunk.Lines {
						switch line.Kind {
						case git.DiffLineAdd:
							splog.Page(output.ColorAdded("+"+line.Content) + "\n")
						case git.DiffLineDelete:
							splog.Page(output.ColorDeleted("-"+line.Content) + "\n")
						default:
							splog.Page(" " + line.Content + "\n")
						}
					}
				}
			}
			return nil
		},
	}

	return cmd
}
