// Package repofleetsdk gives programs direct access to the repofleet core:
// syncing a declared fleet of git repositories, reading their status, and
// discovering existing repositories on disk. It drives the same services as
// the CLI without spawning a process.
package repofleetsdk

// Remote is one configured remote of a repository.
type Remote struct {
	Name string
	URL  string
	Kind string
}

// Repo is one declared or discovered repository.
type Repo struct {
	Name          string
	Namespace     string
	WorktreeSetup bool
	Remotes       []Remote
}

// Tree is a set of repositories below one root directory.
type Tree struct {
	Root  string
	Repos []Repo
}

// RepoSync records what happened to one repository during Sync.
type RepoSync struct {
	Name    string
	Path    string
	Outcome string
	Actions []string
	Err     error
}

// SyncReport summarizes one Sync run.
type SyncReport struct {
	Repos     []RepoSync
	Unmanaged []string
}

// Failed reports whether any repository could not be synced.
func (r SyncReport) Failed() bool {
	for _, repo := range r.Repos {
		if repo.Err != nil {
			return true
		}
	}
	return false
}

// Tracking positions a branch relative to its upstream.
type Tracking struct {
	Ahead  int
	Behind int
}

// Branch pairs a local branch with its upstream, if any.
type Branch struct {
	Name     string
	Upstream string
	Tracking *Tracking
}

// RepoStatus is the read-only summary of one repository.
type RepoStatus struct {
	Path          string
	WorktreeSetup bool
	Missing       bool
	Empty         bool
	Head          string
	NewFiles      int
	ModifiedFiles int
	DeletedFiles  int
	Remotes       []Remote
	Branches      []Branch
	WorktreeCount int
	Health        string
}
