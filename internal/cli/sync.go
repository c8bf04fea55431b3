package cli

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
	"gitlite.dev/gitlite/internal/git"
)

type credentialFlags struct {
	username   string
	password   string
	keyPath    string
	passphrase string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "Username for the remote")
	cmd.Flags().StringVar(&f.password, "password", "", "Password or token for the remote")
	cmd.Flags().StringVar(&f.keyPath, "key", "", "Path to an SSH private key")
	cmd.Flags().StringVar(&f.passphrase, "passphrase", "", "Passphrase for the SSH key")
}

func (f *credentialFlags) credentials() git.Credentials {
	return git.Credentials{
		Username:   f.username,
		Password:   f.password,
		KeyPath:    f.keyPath,
		Passphrase: f.passphrase,
	}
}

// withAuthRetry runs a remote operation, and on an authentication failure in
// an interactive session prompts once for a username/password pair and
// retries.
func withAuthRetry(creds git.Credentials, run func(git.Credentials) error) error {
	err := run(creds)
	if err == nil || !errors.Is(err, gitliteerrors.ErrAuth) {
		return err
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return err
	}

	splog.Warn("authentication failed, enter credentials to retry")
	questions := []*survey.Question{
		{Name: "username", Prompt: &survey.Input{Message: "Username:"}},
		{Name: "password", Prompt: &survey.Password{Message: "Password:"}},
	}
	answers := struct {
		Username string
		Password string
	}{}
	if promptErr := survey.Ask(questions, &answers); promptErr != nil {
		return err
	}

	creds.Username = answers.Username
	creds.Password = answers.Password
	return run(creds)
}

// newFetchCmd creates the fetch command
func newFetchCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "fetch [remote]",
		Short: "Download new objects and update remote-tracking refs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			remote := remoteArg(args)
			return withAuthRetry(creds.credentials(), func(c git.Credentials) error {
				return repo.FetchRemote(cmd.Context(), remote, c)
			})
		},
	}

	creds.register(cmd)
	return cmd
}

// newPullCmd creates the pull command
func newPullCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "pull [remote]",
		Short: "Fetch the current branch and fast-forward onto it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			remote := remoteArg(args)
			return withAuthRetry(creds.credentials(), func(c git.Credentials) error {
				return repo.Pull(cmd.Context(), remote, c)
			})
		},
	}

	creds.register(cmd)
	return cmd
}

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "push [remote]",
		Short: "Upload the current branch to a remote",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			remote := remoteArg(args)
			if err := withAuthRetry(creds.credentials(), func(c git.Credentials) error {
				return repo.PushBranch(cmd.Context(), remote, c)
			}); err != nil {
				return err
			}
			branch, err := repo.CurrentBranch()
			if err != nil {
				return err
			}
			splog.Info("pushed %s", branch)
			return nil
		},
	}

	creds.register(cmd)
	return cmd
}

// newSyncStatusCmd creates the sync-status command
func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-status [remote]",
		Short: "Show how far the current branch is ahead of and behind its remote",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			status, err := repo.RemoteSyncStatus(remoteArg(args))
			if err != nil {
				return err
			}
			if !status.HasUpstream {
				splog.Info("%s has no upstream", status.Branch)
				return nil
			}
			splog.Info("%s: %d ahead, %d behind", status.Branch, status.Ahead, status.Behind)
			return nil
		},
	}
}

func remoteArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return git.DefaultRemote
}
