package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/domain"
)

// Convert turns a plain checkout at path into the worktree container layout:
// the git directory moves into the hidden container, every checked-out file
// is removed, and the repository becomes bare. Callers must verify the
// checkout is clean first, since the files are not recoverable afterwards.
func (s *Store) Convert(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gitDir := filepath.Join(path, ".git")
	container := filepath.Join(path, domain.ContainerDirectory)
	if err := os.Rename(gitDir, container); err != nil {
		return fmt.Errorf("move git dir into container: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read repo dir: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == domain.ContainerDirectory {
			continue
		}
		if err := os.RemoveAll(filepath.Join(path, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}

	if _, err := runGit(ctx, container, "config", "core.bare", "true"); err != nil {
		return err
	}
	return s.setPushDefaultUpstream(ctx, container)
}
