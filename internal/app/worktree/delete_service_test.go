package worktree

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
)

func TestDeleteUnknownWorktree(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	svc := NewDeleteService(vcs, nil)

	err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "ghost"})
	if !errors.Is(err, ErrWorktreeNotFound) {
		t.Fatalf("expected ErrWorktreeNotFound, got %v", err)
	}
}

func TestDeleteRefusesDirtyWorktree(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.changes[filepath.Join(vcs.container, "feature")] = domain.RepoChanges{Modified: 2}
	svc := NewDeleteService(vcs, nil)

	err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature"})
	if !errors.Is(err, ErrWorktreeDirty) {
		t.Fatalf("expected ErrWorktreeDirty, got %v", err)
	}
	if len(vcs.calls) != 0 {
		t.Fatalf("expected no mutating calls, got %v", vcs.calls)
	}
}

func TestDeleteRefusesUnmergedBranch(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	svc := NewDeleteService(vcs, nil)

	err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature"})
	if !errors.Is(err, ErrBranchUnmerged) {
		t.Fatalf("expected ErrBranchUnmerged, got %v", err)
	}
}

func TestDeleteMergedBranch(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.ancestors["feature->main"] = true
	svc := NewDeleteService(vcs, nil)

	if err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature"}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"worktree-remove feature", "branch-delete feature"})
}

func TestDeleteBranchInSyncWithUpstream(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	svc := NewDeleteService(vcs, nil)

	if err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature"}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestDeleteRefusesOutOfSyncUpstream(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	vcs.tracking["feature"] = domain.TrackingStatus{Ahead: 3}
	svc := NewDeleteService(vcs, nil)

	err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature"})
	if !errors.Is(err, ErrBranchUnmerged) {
		t.Fatalf("expected ErrBranchUnmerged, got %v", err)
	}
}

func TestDeletePersistentBranchWithoutUpstream(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("main", "main")
	vcs.addCheckout("develop", "develop")
	svc := NewDeleteService(vcs, nil)

	req := DeleteRequest{
		Path:   vcs.container,
		Name:   "develop",
		Config: domain.WorktreeRootConfig{PersistentBranches: domain.PersistentBranches{"main", "develop"}},
	}
	if err := svc.Delete(context.Background(), req); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"worktree-remove develop", "branch-delete develop"})
}

func TestDeleteBranchMergedIntoPersistentBranch(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.ancestors["feature->develop"] = true
	svc := NewDeleteService(vcs, nil)

	req := DeleteRequest{
		Path:   vcs.container,
		Name:   "feature",
		Config: domain.WorktreeRootConfig{PersistentBranches: domain.PersistentBranches{"main", "develop"}},
	}
	if err := svc.Delete(context.Background(), req); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestDeleteRefusesBranchOutsidePersistentBranches(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	// in sync with its upstream, but persistent branches decide alone
	vcs.upstreams["feature"] = domain.Upstream{Remote: "origin", Branch: "feature"}
	svc := NewDeleteService(vcs, nil)

	req := DeleteRequest{
		Path:   vcs.container,
		Name:   "feature",
		Config: domain.WorktreeRootConfig{PersistentBranches: domain.PersistentBranches{"main"}},
	}
	err := svc.Delete(context.Background(), req)
	if !errors.Is(err, ErrBranchUnmerged) {
		t.Fatalf("expected ErrBranchUnmerged, got %v", err)
	}
}

func TestDeleteForceBypassesGuards(t *testing.T) {
	vcs := newFakeVCS(t.TempDir())
	vcs.addCheckout("feature", "feature")
	vcs.changes[filepath.Join(vcs.container, "feature")] = domain.RepoChanges{New: 1}
	svc := NewDeleteService(vcs, nil)

	if err := svc.Delete(context.Background(), DeleteRequest{Path: vcs.container, Name: "feature", Force: true}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"worktree-remove feature", "branch-delete feature"})
}
