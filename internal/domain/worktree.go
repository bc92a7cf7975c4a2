package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ContainerDirectory is the hidden directory inside a worktree-managed
// repository that holds the shared object store. Its presence is what marks a
// repository as worktree-managed.
const ContainerDirectory = ".repofleet-main-tree"

// WorktreeConfigFileName is the optional repository-local configuration file
// at a container's root.
const WorktreeConfigFileName = "repofleet.toml"

// ValidateWorktreeName enforces the branch naming rules shared by worktree
// directories: no leading or trailing slash, no consecutive slashes, no
// whitespace. The worktree directory name always equals the branch name, so
// the same rule covers both.
func ValidateWorktreeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidWorktreeName)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w %q: cannot start or end with a slash", ErrInvalidWorktreeName, name)
	}
	if strings.Contains(name, "//") {
		return fmt.Errorf("%w %q: cannot contain two consecutive slashes", ErrInvalidWorktreeName, name)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w %q: cannot contain whitespace", ErrInvalidWorktreeName, name)
	}
	return nil
}

// Checkout is one entry of a container's checkout list as reported by the
// repository backend. The bare container itself appears with Bare set.
type Checkout struct {
	Path   string
	Branch string
	Bare   bool
}

// Upstream names the remote-tracking counterpart of a local branch.
type Upstream struct {
	Remote string
	Branch string
}

func (u Upstream) String() string {
	return u.Remote + "/" + u.Branch
}

// StashToken identifies a stash entry created while wrapping a branch
// update, so the wrap restores exactly the entry it created. Empty means
// nothing was stashed.
type StashToken string

// PersistentBranches is the ordered branch list from the repository-local
// configuration. The first entry, if any, is the designated default branch.
type PersistentBranches []string

func (p PersistentBranches) Contains(branch string) bool {
	for _, name := range p {
		if name == branch {
			return true
		}
	}
	return false
}

// TrackingConfig is the per-repository tracking policy from the
// repository-local configuration file.
type TrackingConfig struct {
	Default             bool
	DefaultRemote       string
	DefaultRemotePrefix string
}

// WorktreeRootConfig is the full repository-local configuration, reloaded
// from disk on every run.
type WorktreeRootConfig struct {
	Track              *TrackingConfig
	PersistentBranches PersistentBranches
}
