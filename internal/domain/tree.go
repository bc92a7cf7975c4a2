package domain

import (
	"fmt"
	"path"
	"strings"
)

// RemoteKind distinguishes how a remote URL is reached. It is declared in the
// configuration and verified against the URL on load.
type RemoteKind string

const (
	RemoteKindSSH   RemoteKind = "ssh"
	RemoteKindHTTPS RemoteKind = "https"
)

func (k RemoteKind) IsValid() bool {
	return k == RemoteKindSSH || k == RemoteKindHTTPS
}

func ParseRemoteKind(value string) (RemoteKind, error) {
	parsed := RemoteKind(strings.TrimSpace(value))
	if parsed == "" {
		return "", fmt.Errorf("remote kind is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid remote kind: %s", value)
	}
	return parsed, nil
}

// DetectRemoteKind infers the kind from a remote URL. file:// URLs and
// unrecognized schemes are rejected, matching the config validation rules.
func DetectRemoteKind(url string) (RemoteKind, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", ErrRemoteURLRequired
	case strings.HasPrefix(url, "ssh://"), strings.HasPrefix(url, "git@"):
		return RemoteKindSSH, nil
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		return RemoteKindHTTPS, nil
	case strings.HasPrefix(url, "file://"):
		return "", fmt.Errorf("%w: %s", ErrLocalRemoteUnsupported, url)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownRemoteKind, url)
	}
}

type Remote struct {
	Name string
	URL  string
	Kind RemoteKind
}

// Repo is one declared repository inside a Tree. Name doubles as the clone
// target directory, optionally below a namespace subdirectory.
type Repo struct {
	Name          string
	Namespace     string
	WorktreeSetup bool
	Remotes       []Remote
}

// FullName is the path of the repository relative to the tree root.
func (r Repo) FullName() string {
	if r.Namespace == "" {
		return r.Name
	}
	return path.Join(r.Namespace, r.Name)
}

func (r Repo) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrRepoNameRequired
	}
	seen := make(map[string]struct{}, len(r.Remotes))
	for _, remote := range r.Remotes {
		if strings.TrimSpace(remote.Name) == "" {
			return fmt.Errorf("repo %q: %w", r.Name, ErrRemoteNameRequired)
		}
		if _, ok := seen[remote.Name]; ok {
			return fmt.Errorf("repo %q: %w: %s", r.Name, ErrDuplicateRemote, remote.Name)
		}
		seen[remote.Name] = struct{}{}
		if strings.TrimSpace(remote.URL) == "" {
			return fmt.Errorf("repo %q, remote %q: %w", r.Name, remote.Name, ErrRemoteURLRequired)
		}
		if !remote.Kind.IsValid() {
			return fmt.Errorf("repo %q, remote %q: invalid remote kind %q", r.Name, remote.Name, remote.Kind)
		}
	}
	return nil
}

// Tree is a collection of repositories under one root directory. Trees are
// reconstructed on every invocation and never persisted.
type Tree struct {
	Root  string
	Repos []Repo
}

func (t Tree) Validate() error {
	if strings.TrimSpace(t.Root) == "" {
		return ErrTreeRootRequired
	}
	for _, repo := range t.Repos {
		if err := repo.Validate(); err != nil {
			return err
		}
	}
	return nil
}
