package gitrepo

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

// ListWorktrees parses `git worktree list --porcelain` for the container at
// path. The bare container entry itself is included with Bare set.
func (s *Store) ListWorktrees(ctx context.Context, path string) ([]domain.Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := gitLines(ctx, s.GitDir(path, true), "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(lines), nil
}

func parseWorktreeList(lines []string) []domain.Checkout {
	var entries []domain.Checkout
	var current domain.Checkout
	flush := func() {
		if current.Path != "" {
			entries = append(entries, current)
		}
		current = domain.Checkout{}
	}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			current.Bare = true
		}
	}
	flush()
	return entries
}

// AddWorktree checks out branch into a new directory named after it, directly
// under the container's parent.
func (s *Store) AddWorktree(ctx context.Context, path, name, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(path, name)
	_, err := runGit(ctx, s.GitDir(path, true), "worktree", "add", target, branch)
	return err
}

// RemoveWorktree detaches a worktree directory from the container and deletes
// it. Uncommitted changes are discarded, so callers gate on cleanliness first.
func (s *Store) RemoveWorktree(ctx context.Context, path, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(path, name)
	_, err := runGit(ctx, s.GitDir(path, true), "worktree", "remove", "--force", target)
	return err
}

// PruneWorktrees drops administrative entries for worktree directories that
// no longer exist on disk.
func (s *Store) PruneWorktrees(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := runGit(ctx, s.GitDir(path, true), "worktree", "prune")
	return err
}
