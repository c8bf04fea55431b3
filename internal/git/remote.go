package git

import (
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	gitliteerrors "gitlite.dev/gitlite/internal/errors"
)

// Remote is a configured remote and its fetch URL.
type Remote struct {
	Name string
	URL  string
}

// ListRemotes returns the configured remotes sorted by name.
func (r *Repository) ListRemotes() ([]Remote, error) {
	remotes, err := r.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	out := make([]Remote, 0, len(remotes))
	for _, rem := range remotes {
		cfg := rem.Config()
		url := ""
		if len(cfg.URLs) > 0 {
			url = cfg.URLs[0]
		}
		out = append(out, Remote{Name: cfg.Name, URL: url})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddRemote registers a new remote with the default fetch refspec.
func (r *Repository) AddRemote(name, url string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return gitliteerrors.ErrEmptyName
	}
	_, err := r.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("failed to add remote %q: %w", name, err)
	}
	return nil
}

// RemoveRemote deletes a remote and its configuration.
func (r *Repository) RemoveRemote(name string) error {
	if err := r.DeleteRemote(name); err != nil {
		if err == gogit.ErrRemoteNotFound {
			return gitliteerrors.NewReferenceNotFoundError(name)
		}
		return fmt.Errorf("failed to remove remote %q: %w", name, err)
	}
	return nil
}

// SetRemoteURL rewrites the fetch URL of an existing remote.
func (r *Repository) SetRemoteURL(name, url string) error {
	cfg, err := r.Config()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	rc, ok := cfg.Remotes[name]
	if !ok {
		return gitliteerrors.NewReferenceNotFoundError(name)
	}
	rc.URLs = []string{url}
	if err := r.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// RenameRemote renames a remote, rewriting its fetch refspecs and moving its
// remote-tracking refs. Refspecs that do not mention the conventional
// refs/remotes/<name>/ layout are left alone and reported via the notifier.
func (r *Repository) RenameRemote(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return gitliteerrors.ErrEmptyName
	}

	cfg, err := r.Config()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	rc, ok := cfg.Remotes[oldName]
	if !ok {
		return gitliteerrors.NewReferenceNotFoundError(oldName)
	}
	if _, exists := cfg.Remotes[newName]; exists {
		return fmt.Errorf("remote %q already exists", newName)
	}

	oldPrefix := "refs/remotes/" + oldName + "/"
	newPrefix := "refs/remotes/" + newName + "/"

	skipped := 0
	specs := make([]config.RefSpec, 0, len(rc.Fetch))
	for _, spec := range rc.Fetch {
		s := string(spec)
		if !strings.Contains(s, oldPrefix) {
			skipped++
			specs = append(specs, spec)
			continue
		}
		specs = append(specs, config.RefSpec(strings.ReplaceAll(s, oldPrefix, newPrefix)))
	}

	rc.Name = newName
	rc.Fetch = specs
	delete(cfg.Remotes, oldName)
	cfg.Remotes[newName] = rc
	if err := r.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := r.moveRemoteRefs(oldPrefix, newPrefix); err != nil {
		return err
	}

	if skipped > 0 {
		r.notify.Warn("%d fetch refspec(s) for %q did not follow the standard layout and were not rewritten", skipped, oldName)
	}
	return nil
}

func (r *Repository) moveRemoteRefs(oldPrefix, newPrefix string) error {
	refs, err := r.References()
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}

	var moves []*plumbing.Reference
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && strings.HasPrefix(ref.Name().String(), oldPrefix) {
			moves = append(moves, ref)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to iterate references: %w", err)
	}

	for _, ref := range moves {
		newName := plumbing.ReferenceName(newPrefix + strings.TrimPrefix(ref.Name().String(), oldPrefix))
		if err := r.Storer.SetReference(plumbing.NewHashReference(newName, ref.Hash())); err != nil {
			return fmt.Errorf("failed to move reference %s: %w", ref.Name(), err)
		}
		if err := r.Storer.RemoveReference(ref.Name()); err != nil {
			return fmt.Errorf("failed to remove reference %s: %w", ref.Name(), err)
		}
	}
	return nil
}
