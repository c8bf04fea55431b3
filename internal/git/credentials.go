package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Credentials are caller-supplied secrets for a remote operation. All fields
// are optional; empty credentials fall back to the configured credential
// helper, then the SSH agent for ssh remotes.
type Credentials struct {
	Username   string
	Password   string
	KeyPath    string
	Passphrase string
}

// resolveAuth picks an authentication method for the remote URL, trying
// providers in a fixed priority order: the configured credential helper, the
// SSH agent for ssh transports, then explicit caller-supplied credentials.
// Returning a nil method is valid: the transport then uses its own defaults
// (anonymous HTTP, local filesystem).
func (r *Repository) resolveAuth(ctx context.Context, remoteURL string, creds Credentials) (transport.AuthMethod, error) {
	if !isSSHURL(remoteURL) {
		if auth := r.credentialHelperAuth(ctx, remoteURL, creds.Username); auth != nil {
			return auth, nil
		}
	}

	if isSSHURL(remoteURL) && creds.KeyPath == "" {
		if auth, err := gitssh.NewSSHAgentAuth(sshUser(remoteURL, creds.Username)); err == nil {
			return auth, nil
		}
		// no agent running is not fatal; fall through to explicit creds
	}

	if creds.KeyPath != "" {
		auth, err := gitssh.NewPublicKeysFromFile(sshUser(remoteURL, creds.Username), creds.KeyPath, creds.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to load key %s: %w", creds.KeyPath, err)
		}
		return auth, nil
	}
	if creds.Username != "" && creds.Password != "" {
		return &githttp.BasicAuth{Username: creds.Username, Password: creds.Password}, nil
	}

	return nil, nil
}

// credentialHelperAuth asks the configured git credential helpers for a
// username/password pair. Prompting is disabled; a helper with nothing stored
// simply yields no auth.
func (r *Repository) credentialHelperAuth(ctx context.Context, remoteURL, usernameHint string) transport.AuthMethod {
	input := fmt.Sprintf("url=%s\n\n", remoteURL)
	if usernameHint != "" {
		input = fmt.Sprintf("url=%s\nusername=%s\n\n", remoteURL, usernameHint)
	}
	out, err := r.runner.RunWithInput(ctx, input, []string{"GIT_TERMINAL_PROMPT=0"}, "credential", "fill")
	if err != nil {
		return nil
	}

	var username, password string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "username="); ok {
			username = v
		}
		if v, ok := strings.CutPrefix(line, "password="); ok {
			password = v
		}
	}
	if username == "" || password == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: username, Password: password}
}

func isSSHURL(url string) bool {
	if strings.HasPrefix(url, "ssh://") {
		return true
	}
	// scp-like syntax: git@host:path
	if !strings.Contains(url, "://") && strings.Contains(url, "@") && strings.Contains(url, ":") {
		return true
	}
	return false
}

// sshUser extracts the user from an ssh remote URL, preferring an explicit
// override and defaulting to "git".
func sshUser(url, override string) string {
	if override != "" {
		return override
	}
	rest := strings.TrimPrefix(url, "ssh://")
	if at := strings.Index(rest, "@"); at > 0 {
		return rest[:at]
	}
	return "git"
}

// DetectSSHKeys returns private key files found under ~/.ssh, most preferred
// first.
func DetectSSHKeys() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var keys []string
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		path := filepath.Join(home, ".ssh", name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			keys = append(keys, path)
		}
	}
	return keys
}
