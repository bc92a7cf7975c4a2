package worktree

import (
	"context"
	"errors"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
)

func TestConvertRefusesDirtyRepo(t *testing.T) {
	path := t.TempDir()
	vcs := newFakeVCS("")
	vcs.plainRepos[path] = true
	vcs.changes[path] = domain.RepoChanges{Modified: 1}

	svc := NewConvertService(vcs, nil)
	if err := svc.Convert(context.Background(), path); !errors.Is(err, ErrWorktreeDirty) {
		t.Fatalf("expected ErrWorktreeDirty, got %v", err)
	}
}

func TestConvertRefusesIgnoredFiles(t *testing.T) {
	path := t.TempDir()
	vcs := newFakeVCS("")
	vcs.plainRepos[path] = true
	vcs.ignored[path] = true

	svc := NewConvertService(vcs, nil)
	if err := svc.Convert(context.Background(), path); !errors.Is(err, ErrIgnoredFilesPresent) {
		t.Fatalf("expected ErrIgnoredFilesPresent, got %v", err)
	}
}

func TestConvertRefusesConvertedRepo(t *testing.T) {
	path := t.TempDir()
	vcs := newFakeVCS(path)

	svc := NewConvertService(vcs, nil)
	if err := svc.Convert(context.Background(), path); !errors.Is(err, ErrAlreadyWorktreeRepo) {
		t.Fatalf("expected ErrAlreadyWorktreeRepo, got %v", err)
	}
}

func TestConvertCleanRepo(t *testing.T) {
	path := t.TempDir()
	vcs := newFakeVCS("")
	vcs.plainRepos[path] = true

	svc := NewConvertService(vcs, nil)
	if err := svc.Convert(context.Background(), path); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	assertCalls(t, vcs.calls, []string{"convert " + path})
}
