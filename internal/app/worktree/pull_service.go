package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type PullService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewPullService(vcs VCS, logger *slog.Logger) *PullService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PullService{vcs: vcs, logger: logger}
}

type PullRequest struct {
	Path   string
	Rebase bool
	Stash  bool
	Config domain.WorktreeRootConfig
}

// Pull fetches all remotes, then brings every worktree's branch up to date
// with its own upstream. Worktrees without an upstream are reported and left
// alone, and dirty worktrees are refused unless Stash is set. One failing
// worktree does not stop the others.
func (s *PullService) Pull(ctx context.Context, req PullRequest) ([]BranchUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := paths.NormalizeRepoPath(req.Path)
	if err != nil {
		return nil, err
	}
	if !s.vcs.IsContainer(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}
	if err := s.vcs.FetchAll(ctx, path, true); err != nil {
		return nil, err
	}

	checkouts, err := s.vcs.ListWorktrees(ctx, path)
	if err != nil {
		return nil, err
	}

	var updates []BranchUpdate
	for _, checkout := range checkouts {
		if checkout.Bare {
			continue
		}
		name, relErr := filepath.Rel(path, checkout.Path)
		if relErr != nil {
			name = filepath.Base(checkout.Path)
		}
		update := forwardBranch(ctx, s.vcs, path, checkout, name, req.Rebase, req.Stash)
		if update.Err != nil {
			s.logger.Error("pull worktree failed", "worktree", name, "error", update.Err)
		}
		updates = append(updates, update)
	}
	return updates, nil
}
