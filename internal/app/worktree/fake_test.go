package worktree

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/domain"
)

// fakeVCS implements the VCS port in memory and records mutating calls in
// order, so tests can assert both outcomes and the exact sequence of actions.
type fakeVCS struct {
	container      string
	plainRepos     map[string]bool
	checkouts      []domain.Checkout
	localBranches  map[string]bool
	remoteBranches map[string]bool
	upstreams      map[string]domain.Upstream
	tracking       map[string]domain.TrackingStatus
	ancestors      map[string]bool
	changes        map[string]domain.RepoChanges
	ignored        map[string]bool
	defaultBranch  string

	fetchErr error
	ffErr    error
	calls    []string
}

func newFakeVCS(container string) *fakeVCS {
	return &fakeVCS{
		container:      container,
		plainRepos:     map[string]bool{},
		localBranches:  map[string]bool{},
		remoteBranches: map[string]bool{},
		upstreams:      map[string]domain.Upstream{},
		tracking:       map[string]domain.TrackingStatus{},
		ancestors:      map[string]bool{},
		changes:        map[string]domain.RepoChanges{},
		ignored:        map[string]bool{},
		defaultBranch:  "main",
	}
}

func (f *fakeVCS) addCheckout(name, branch string) {
	f.checkouts = append(f.checkouts, domain.Checkout{Path: filepath.Join(f.container, name), Branch: branch})
	f.localBranches[branch] = true
}

func (f *fakeVCS) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeVCS) IsContainer(path string) bool { return path == f.container }

func (f *fakeVCS) IsRepository(path string) bool {
	return path == f.container || f.plainRepos[path]
}

func (f *fakeVCS) ListWorktrees(ctx context.Context, path string) ([]domain.Checkout, error) {
	entries := []domain.Checkout{{Path: filepath.Join(path, domain.ContainerDirectory), Bare: true}}
	return append(entries, f.checkouts...), nil
}

func (f *fakeVCS) AddWorktree(ctx context.Context, path, name, branch string) error {
	f.record("worktree-add %s %s", name, branch)
	f.checkouts = append(f.checkouts, domain.Checkout{Path: filepath.Join(path, name), Branch: branch})
	return nil
}

func (f *fakeVCS) RemoveWorktree(ctx context.Context, path, name string) error {
	f.record("worktree-remove %s", name)
	target := filepath.Join(path, name)
	kept := f.checkouts[:0]
	for _, checkout := range f.checkouts {
		if checkout.Path != target {
			kept = append(kept, checkout)
		}
	}
	f.checkouts = kept
	return nil
}

func (f *fakeVCS) PruneWorktrees(ctx context.Context, path string) error { return nil }

func (f *fakeVCS) LocalBranchExists(ctx context.Context, path string, worktreeSetup bool, branch string) (bool, error) {
	return f.localBranches[branch], nil
}

func (f *fakeVCS) RemoteBranchExists(ctx context.Context, path string, worktreeSetup bool, remote, branch string) (bool, error) {
	return f.remoteBranches[remote+"/"+branch], nil
}

func (f *fakeVCS) CreateBranch(ctx context.Context, path string, worktreeSetup bool, branch, startPoint string) error {
	f.record("branch %s from %s", branch, startPoint)
	f.localBranches[branch] = true
	return nil
}

func (f *fakeVCS) DeleteBranch(ctx context.Context, path string, worktreeSetup bool, branch string) error {
	f.record("branch-delete %s", branch)
	delete(f.localBranches, branch)
	return nil
}

func (f *fakeVCS) DefaultBranch(ctx context.Context, path string, worktreeSetup bool, persistent domain.PersistentBranches) (string, error) {
	if len(persistent) > 0 && f.localBranches[persistent[0]] {
		return persistent[0], nil
	}
	if f.defaultBranch == "" {
		return "", errors.New("no default branch found")
	}
	return f.defaultBranch, nil
}

func (f *fakeVCS) BranchUpstream(ctx context.Context, path string, worktreeSetup bool, branch string) (domain.Upstream, error) {
	upstream, ok := f.upstreams[branch]
	if !ok {
		return domain.Upstream{}, fmt.Errorf("%w: %s", domain.ErrNoUpstream, branch)
	}
	return upstream, nil
}

func (f *fakeVCS) SetUpstream(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error {
	f.record("set-upstream %s %s/%s", branch, remote, remoteBranch)
	f.upstreams[branch] = domain.Upstream{Remote: remote, Branch: remoteBranch}
	return nil
}

func (f *fakeVCS) PushBranch(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error {
	f.record("push %s %s/%s", branch, remote, remoteBranch)
	f.remoteBranches[remote+"/"+remoteBranch] = true
	return nil
}

func (f *fakeVCS) AheadBehind(ctx context.Context, path string, worktreeSetup bool, local, upstream string) (domain.TrackingStatus, error) {
	return f.tracking[local], nil
}

func (f *fakeVCS) IsAncestor(ctx context.Context, path string, worktreeSetup bool, ancestor, descendant string) (bool, error) {
	return f.ancestors[ancestor+"->"+descendant], nil
}

func (f *fakeVCS) Changes(ctx context.Context, dir string) (domain.RepoChanges, error) {
	return f.changes[dir], nil
}

func (f *fakeVCS) HasIgnoredFiles(ctx context.Context, dir string) (bool, error) {
	return f.ignored[dir], nil
}

func (f *fakeVCS) FetchAll(ctx context.Context, path string, worktreeSetup bool) error {
	f.record("fetch-all")
	return f.fetchErr
}

func (f *fakeVCS) StashPush(ctx context.Context, dir string) (domain.StashToken, error) {
	if f.changes[dir].Clean() {
		return "", nil
	}
	f.record("stash-push %s", filepath.Base(dir))
	return "tok", nil
}

func (f *fakeVCS) StashPop(ctx context.Context, dir string, token domain.StashToken) error {
	if token == "" {
		return nil
	}
	f.record("stash-pop %s", filepath.Base(dir))
	return nil
}

func (f *fakeVCS) FastForward(ctx context.Context, dir, target string) error {
	f.record("ff %s onto %s", filepath.Base(dir), target)
	return f.ffErr
}

func (f *fakeVCS) Rebase(ctx context.Context, dir, target string) error {
	f.record("rebase %s onto %s", filepath.Base(dir), target)
	return nil
}

func (f *fakeVCS) Convert(ctx context.Context, path string) error {
	f.record("convert %s", path)
	return nil
}
