package worktree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type AddService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewAddService(vcs VCS, logger *slog.Logger) *AddService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddService{vcs: vcs, logger: logger}
}

type AddRequest struct {
	Path    string
	Name    string
	NoTrack bool
	Track   string
	Config  domain.WorktreeRootConfig
}

// Add creates a worktree for a branch named after the request. An existing
// local branch is checked out as-is; otherwise the branch is created from the
// resolved tracking target, or from the default branch when nothing is
// tracked. When tracking points at a branch the remote does not have yet, the
// branch is pushed so the upstream exists immediately.
func (s *AddService) Add(ctx context.Context, req AddRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := domain.ValidateWorktreeName(req.Name); err != nil {
		return "", err
	}

	path, err := paths.NormalizeRepoPath(req.Path)
	if err != nil {
		return "", err
	}
	if !s.vcs.IsContainer(path) {
		return "", fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}
	if err := s.vcs.PruneWorktrees(ctx, path); err != nil {
		return "", err
	}

	target := filepath.Join(path, req.Name)
	checkouts, err := s.vcs.ListWorktrees(ctx, path)
	if err != nil {
		return "", err
	}
	for _, checkout := range checkouts {
		if checkout.Path == target {
			return "", fmt.Errorf("%w: %s", ErrWorktreeExists, req.Name)
		}
	}
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrDirectoryOccupied, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", target, err)
	}

	tracking, err := ResolveTracking(TrackingRequest{
		WorktreeName: req.Name,
		NoTrack:      req.NoTrack,
		Track:        req.Track,
		Config:       req.Config.Track,
	})
	if err != nil {
		return "", err
	}

	if err := s.ensureBranch(ctx, path, req.Name, tracking, req.Config.PersistentBranches); err != nil {
		return "", err
	}
	if err := s.vcs.AddWorktree(ctx, path, req.Name, req.Name); err != nil {
		return "", err
	}
	s.logger.Info("worktree added", "path", target, "branch", req.Name)
	return target, nil
}

func (s *AddService) ensureBranch(ctx context.Context, path, name string, tracking *TrackingSpec, persistent domain.PersistentBranches) error {
	exists, err := s.vcs.LocalBranchExists(ctx, path, true, name)
	if err != nil {
		return err
	}

	if exists {
		if tracking != nil {
			remoteExists, err := s.vcs.RemoteBranchExists(ctx, path, true, tracking.Remote, tracking.Branch)
			if err != nil {
				return err
			}
			if remoteExists {
				status, err := s.vcs.AheadBehind(ctx, path, true, name, tracking.Remote+"/"+tracking.Branch)
				if err == nil && !status.UpToDate() {
					s.logger.Warn("local and remote branch differ",
						"branch", name, "upstream", tracking.Remote+"/"+tracking.Branch, "tracking", status.String())
				}
			}
			return s.vcs.SetUpstream(ctx, path, true, name, tracking.Remote, tracking.Branch)
		}
		return nil
	}

	if tracking != nil {
		remoteExists, err := s.vcs.RemoteBranchExists(ctx, path, true, tracking.Remote, tracking.Branch)
		if err != nil {
			return err
		}
		if remoteExists {
			if err := s.vcs.CreateBranch(ctx, path, true, name, tracking.Remote+"/"+tracking.Branch); err != nil {
				return err
			}
			return s.vcs.SetUpstream(ctx, path, true, name, tracking.Remote, tracking.Branch)
		}

		defaultBranch, err := s.vcs.DefaultBranch(ctx, path, true, persistent)
		if err != nil {
			return err
		}
		if err := s.vcs.CreateBranch(ctx, path, true, name, defaultBranch); err != nil {
			return err
		}
		if err := s.vcs.PushBranch(ctx, path, true, name, tracking.Remote, tracking.Branch); err != nil {
			return err
		}
		return s.vcs.SetUpstream(ctx, path, true, name, tracking.Remote, tracking.Branch)
	}

	defaultBranch, err := s.vcs.DefaultBranch(ctx, path, true, persistent)
	if err != nil {
		return err
	}
	return s.vcs.CreateBranch(ctx, path, true, name, defaultBranch)
}
