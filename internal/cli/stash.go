package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gitlite.dev/gitlite/internal/output"
)

// newStashCmd creates the stash command group
func newStashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stash",
		Short: "Shelve and restore local changes",
	}

	var message string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Stash all local changes, including untracked files",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.StashSave(cmd.Context(), message)
		},
	}
	saveCmd.Flags().StringVarP(&message, "message", "m", "", "Description for the stash entry")
	cmd.AddCommand(saveCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stash entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := repo.StashList(cmd.Context())
			if err != nil {
				return err
			}
			for _, entry := range entries {
				when := time.Unix(entry.Date, 0).Format("2006-01-02 15:04")
				splog.Page(output.ColorHash("stash@{"+strconv.Itoa(entry.Index)+"}") +
					"  " + when + "  " + output.ColorDim(entry.Author) + "  " + entry.Message + "\n")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <index>",
		Short: "Re-apply a stash entry, keeping it in the stash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return repo.StashApply(cmd.Context(), index)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop <index>",
		Short: "Delete a stash entry without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return repo.StashDrop(cmd.Context(), index)
		},
	})

	return cmd
}
