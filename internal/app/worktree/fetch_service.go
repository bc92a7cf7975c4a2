package worktree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repofleet/repofleet/internal/app/paths"
)

type FetchService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewFetchService(vcs VCS, logger *slog.Logger) *FetchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchService{vcs: vcs, logger: logger}
}

// Fetch updates all remote-tracking refs of the container. No local branch
// or worktree is modified.
func (s *FetchService) Fetch(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return err
	}
	if !s.vcs.IsContainer(path) {
		return fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}
	if err := s.vcs.FetchAll(ctx, path, true); err != nil {
		return err
	}
	s.logger.Debug("fetched all remotes", "path", path)
	return nil
}
