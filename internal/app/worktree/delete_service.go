package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type DeleteService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewDeleteService(vcs VCS, logger *slog.Logger) *DeleteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteService{vcs: vcs, logger: logger}
}

type DeleteRequest struct {
	Path   string
	Name   string
	Force  bool
	Config domain.WorktreeRootConfig
}

// Delete removes a worktree and its branch. Without force it refuses when the
// checkout is dirty or when the branch holds commits that exist neither in
// the default branch nor on the branch's own upstream.
func (s *DeleteService) Delete(ctx context.Context, req DeleteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := paths.NormalizeRepoPath(req.Path)
	if err != nil {
		return err
	}
	if !s.vcs.IsContainer(path) {
		return fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}

	checkout, err := s.findCheckout(ctx, path, req.Name)
	if err != nil {
		return err
	}

	if !req.Force {
		if err := guardDeletion(ctx, s.vcs, path, checkout, req.Config.PersistentBranches); err != nil {
			return err
		}
	}

	if err := s.vcs.RemoveWorktree(ctx, path, req.Name); err != nil {
		return err
	}
	if checkout.Branch != "" {
		if err := s.vcs.DeleteBranch(ctx, path, true, checkout.Branch); err != nil {
			return err
		}
	}
	s.logger.Info("worktree deleted", "path", checkout.Path, "branch", checkout.Branch, "forced", req.Force)
	return nil
}

func (s *DeleteService) findCheckout(ctx context.Context, path, name string) (domain.Checkout, error) {
	checkouts, err := s.vcs.ListWorktrees(ctx, path)
	if err != nil {
		return domain.Checkout{}, err
	}
	target := filepath.Join(path, name)
	for _, checkout := range checkouts {
		if checkout.Path == target {
			return checkout, nil
		}
	}
	return domain.Checkout{}, fmt.Errorf("%w: %s", ErrWorktreeNotFound, name)
}
