package worktree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repofleet/repofleet/internal/app/paths"
)

type ConvertService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewConvertService(vcs VCS, logger *slog.Logger) *ConvertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertService{vcs: vcs, logger: logger}
}

// Convert turns a plain checkout into a worktree-managed repository. The
// conversion discards the checked-out files, so it refuses while uncommitted
// changes or ignored files are present.
func (s *ConvertService) Convert(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return err
	}
	if s.vcs.IsContainer(path) {
		return fmt.Errorf("%w: %s", ErrAlreadyWorktreeRepo, path)
	}
	if !s.vcs.IsRepository(path) {
		return fmt.Errorf("not a git repository: %s", path)
	}

	changes, err := s.vcs.Changes(ctx, path)
	if err != nil {
		return err
	}
	if !changes.Clean() {
		return fmt.Errorf("%w: %s", ErrWorktreeDirty, changes)
	}
	ignored, err := s.vcs.HasIgnoredFiles(ctx, path)
	if err != nil {
		return err
	}
	if ignored {
		return fmt.Errorf("%w: %s", ErrIgnoredFilesPresent, path)
	}

	if err := s.vcs.Convert(ctx, path); err != nil {
		return err
	}
	s.logger.Info("repository converted", "path", path)
	return nil
}
