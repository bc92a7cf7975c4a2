package worktree

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
)

func TestPullForwardsBranchesWithUpstreams(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.addCheckout("local-only", "local-only")
	vcs.upstreams["main"] = domain.Upstream{Remote: "origin", Branch: "main"}
	vcs.tracking["main"] = domain.TrackingStatus{Behind: 2}

	svc := NewPullService(vcs, nil)
	updates, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if !updates[0].Updated {
		t.Fatalf("expected main to be updated: %+v", updates[0])
	}
	if updates[1].Updated || updates[1].Refused || updates[1].Reason != "no tracking branch" {
		t.Fatalf("expected local-only to be skipped, got %+v", updates[1])
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "ff main onto origin/main"})
}

func TestPullRefusesDirtyWorktree(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	vcs.tracking["feature"] = domain.TrackingStatus{Behind: 2}
	vcs.changes[filepath.Join(vcs.container, "feature")] = domain.RepoChanges{Modified: 1}

	svc := NewPullService(vcs, nil)
	updates, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	update := updates[0]
	if update.Updated || !update.Refused || update.Reason != "contains changes" || update.Err != nil {
		t.Fatalf("expected dirty worktree to be refused, got %+v", update)
	}
	assertCalls(t, vcs.calls, []string{"fetch-all"})
}

func TestPullStashesAroundUpdate(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.upstreams["main"] = domain.Upstream{Remote: "origin", Branch: "main"}
	vcs.tracking["main"] = domain.TrackingStatus{Behind: 1}
	vcs.changes[filepath.Join(vcs.container, "main")] = domain.RepoChanges{Modified: 1}

	svc := NewPullService(vcs, nil)
	if _, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container, Stash: true}); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "stash-push main", "ff main onto origin/main", "stash-pop main"})
}

func TestPullRestoresStashWhenUpdateFails(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.upstreams["main"] = domain.Upstream{Remote: "origin", Branch: "main"}
	vcs.tracking["main"] = domain.TrackingStatus{Ahead: 1, Behind: 1}
	vcs.changes[filepath.Join(vcs.container, "main")] = domain.RepoChanges{Modified: 1}
	vcs.ffErr = errors.New("object store corrupt")

	svc := NewPullService(vcs, nil)
	updates, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container, Stash: true})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if updates[0].Err == nil {
		t.Fatalf("expected update error, got %+v", updates[0])
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "stash-push main", "ff main onto origin/main", "stash-pop main"})
}

func TestPullReportsNonFastForwardAsRefusal(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	vcs.tracking["feature"] = domain.TrackingStatus{Ahead: 1, Behind: 1}
	vcs.ffErr = domain.ErrNotFastForward

	svc := NewPullService(vcs, nil)
	updates, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	update := updates[0]
	if update.Err != nil || !update.Refused || update.Reason != "cannot be fast-forwarded" {
		t.Fatalf("expected fast-forward refusal, got %+v", update)
	}
}

func TestPullWithRebase(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.upstreams["main"] = domain.Upstream{Remote: "origin", Branch: "main"}
	vcs.tracking["main"] = domain.TrackingStatus{Ahead: 1, Behind: 1}

	svc := NewPullService(vcs, nil)
	if _, err := svc.Pull(context.Background(), PullRequest{Path: vcs.container, Rebase: true}); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "rebase main onto origin/main"})
}

func TestRebaseOntoDefaultBranch(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.addCheckout("feature", "feature")

	svc := NewRebaseService(vcs, nil)
	updates, err := svc.Rebase(context.Background(), RebaseRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Rebase returned error: %v", err)
	}

	if updates[0].Reason != "default branch" {
		t.Fatalf("expected main skipped as default branch, got %+v", updates[0])
	}
	if !updates[1].Updated {
		t.Fatalf("expected feature rebased, got %+v", updates[1])
	}
	assertCalls(t, vcs.calls, []string{"rebase feature onto main"})
}

func TestRebaseRefusesDirtyWorktree(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.changes[filepath.Join(vcs.container, "feature")] = domain.RepoChanges{New: 1}

	svc := NewRebaseService(vcs, nil)
	updates, err := svc.Rebase(context.Background(), RebaseRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Rebase returned error: %v", err)
	}
	update := updates[0]
	if update.Updated || !update.Refused || update.Reason != "contains changes" {
		t.Fatalf("expected dirty worktree to be refused, got %+v", update)
	}
	if len(vcs.calls) != 0 {
		t.Fatalf("expected no mutating calls, got %v", vcs.calls)
	}
}

func TestRebaseWithPullFastForwardsByDefault(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	vcs.tracking["feature"] = domain.TrackingStatus{Behind: 1}

	svc := NewRebaseService(vcs, nil)
	if _, err := svc.Rebase(context.Background(), RebaseRequest{Path: vcs.container, Pull: true}); err != nil {
		t.Fatalf("Rebase returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "ff feature onto origin/feature", "rebase feature onto main"})
}

func TestRebaseWithPullCanRebaseOntoUpstream(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	vcs.tracking["feature"] = domain.TrackingStatus{Ahead: 1, Behind: 1}

	svc := NewRebaseService(vcs, nil)
	if _, err := svc.Rebase(context.Background(), RebaseRequest{Path: vcs.container, Pull: true, RebaseOnPull: true}); err != nil {
		t.Fatalf("Rebase returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"fetch-all", "rebase feature onto origin/feature", "rebase feature onto main"})
}

func TestRebaseSkipsUpToDateBranches(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.ancestors["main->feature"] = true

	svc := NewRebaseService(vcs, nil)
	updates, err := svc.Rebase(context.Background(), RebaseRequest{Path: vcs.container})
	if err != nil {
		t.Fatalf("Rebase returned error: %v", err)
	}
	if updates[0].Updated || updates[0].Reason != "up to date" {
		t.Fatalf("expected feature skipped as up to date, got %+v", updates[0])
	}
}
