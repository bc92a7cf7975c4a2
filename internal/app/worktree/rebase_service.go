package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type RebaseService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewRebaseService(vcs VCS, logger *slog.Logger) *RebaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebaseService{vcs: vcs, logger: logger}
}

type RebaseRequest struct {
	Path         string
	Pull         bool
	RebaseOnPull bool
	Stash        bool
	Config       domain.WorktreeRootConfig
}

// Rebase replays every worktree's branch onto the default branch. With Pull
// set, all remotes are fetched and each branch is first brought up to date
// with its own upstream, by fast-forward or, with RebaseOnPull, by rebase.
// Dirty worktrees are refused unless Stash is set.
func (s *RebaseService) Rebase(ctx context.Context, req RebaseRequest) ([]BranchUpdate, error) {
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
	if req.Pull {
		if err := s.vcs.FetchAll(ctx, path, true); err != nil {
			return nil, err
		}
	}

	defaultBranch, err := s.vcs.DefaultBranch(ctx, path, true, req.Config.PersistentBranches)
	if err != nil {
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

		if req.Pull {
			update := forwardBranch(ctx, s.vcs, path, checkout, name, req.RebaseOnPull, req.Stash)
			if update.Err != nil || update.Refused {
				if update.Err != nil {
					s.logger.Error("pull before rebase failed", "worktree", name, "error", update.Err)
				}
				updates = append(updates, update)
				continue
			}
		}

		update := s.rebaseOntoDefault(ctx, path, checkout, name, defaultBranch, req.Stash)
		if update.Err != nil {
			s.logger.Error("rebase worktree failed", "worktree", name, "error", update.Err)
		}
		updates = append(updates, update)
	}
	return updates, nil
}

func (s *RebaseService) rebaseOntoDefault(ctx context.Context, path string, checkout domain.Checkout, name, defaultBranch string, stash bool) BranchUpdate {
	update := BranchUpdate{Name: name, Branch: checkout.Branch}
	if checkout.Branch == defaultBranch {
		update.Reason = "default branch"
		return update
	}

	upToDate, err := s.vcs.IsAncestor(ctx, path, true, defaultBranch, checkout.Branch)
	if err != nil {
		update.Err = err
		return update
	}
	if upToDate {
		update.Reason = "up to date"
		return update
	}

	changes, err := s.vcs.Changes(ctx, checkout.Path)
	if err != nil {
		update.Err = err
		return update
	}
	if !changes.Clean() && !stash {
		update.Reason = "contains changes"
		update.Refused = true
		return update
	}

	token, err := s.vcs.StashPush(ctx, checkout.Path)
	if err != nil {
		update.Err = err
		return update
	}
	err = s.vcs.Rebase(ctx, checkout.Path, defaultBranch)
	if popErr := s.vcs.StashPop(ctx, checkout.Path, token); popErr != nil {
		if err == nil {
			err = popErr
		} else {
			err = fmt.Errorf("%w (restoring stashed changes also failed: %v)", err, popErr)
		}
	}
	if err != nil {
		update.Err = err
		return update
	}
	update.Updated = true
	return update
}
