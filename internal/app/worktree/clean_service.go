package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type CleanService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewCleanService(vcs VCS, logger *slog.Logger) *CleanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanService{vcs: vcs, logger: logger}
}

type CleanRequest struct {
	Path   string
	Config domain.WorktreeRootConfig
}

// SkippedWorktree is a worktree that clean left in place, with the reason.
type SkippedWorktree struct {
	Name   string
	Reason string
}

// CleanReport summarizes one clean run.
type CleanReport struct {
	Deleted   []string
	Skipped   []SkippedWorktree
	Unmanaged []string
}

// Clean deletes every worktree that would pass the no-force deletion guard.
// Persistent branches and the default branch are never touched. Directories
// inside the container that git does not know about are reported, not
// removed.
func (s *CleanService) Clean(ctx context.Context, req CleanRequest) (CleanReport, error) {
	if err := ctx.Err(); err != nil {
		return CleanReport{}, err
	}

	path, err := paths.NormalizeRepoPath(req.Path)
	if err != nil {
		return CleanReport{}, err
	}
	if !s.vcs.IsContainer(path) {
		return CleanReport{}, fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}
	if err := s.vcs.PruneWorktrees(ctx, path); err != nil {
		return CleanReport{}, err
	}

	checkouts, err := s.vcs.ListWorktrees(ctx, path)
	if err != nil {
		return CleanReport{}, err
	}

	defaultBranch, err := s.vcs.DefaultBranch(ctx, path, true, req.Config.PersistentBranches)
	if err != nil {
		return CleanReport{}, err
	}

	var report CleanReport
	managed := map[string]struct{}{}
	for _, checkout := range checkouts {
		if checkout.Bare {
			continue
		}
		name, err := filepath.Rel(path, checkout.Path)
		if err != nil {
			name = filepath.Base(checkout.Path)
		}
		managed[name] = struct{}{}

		if checkout.Branch == defaultBranch {
			report.Skipped = append(report.Skipped, SkippedWorktree{Name: name, Reason: "default branch"})
			continue
		}
		if req.Config.PersistentBranches.Contains(checkout.Branch) {
			report.Skipped = append(report.Skipped, SkippedWorktree{Name: name, Reason: "persistent branch"})
			continue
		}
		if err := guardDeletion(ctx, s.vcs, path, checkout, req.Config.PersistentBranches); err != nil {
			report.Skipped = append(report.Skipped, SkippedWorktree{Name: name, Reason: err.Error()})
			continue
		}

		if err := s.vcs.RemoveWorktree(ctx, path, name); err != nil {
			return report, err
		}
		if err := s.vcs.DeleteBranch(ctx, path, true, checkout.Branch); err != nil {
			return report, err
		}
		s.logger.Info("worktree cleaned", "path", checkout.Path, "branch", checkout.Branch)
		report.Deleted = append(report.Deleted, name)
	}

	unmanaged, err := s.findUnmanaged(path, managed)
	if err != nil {
		return report, err
	}
	report.Unmanaged = unmanaged
	return report, nil
}

// findUnmanaged lists top-level directories in the container that are not
// the object store and not a known checkout. Worktree names may contain
// slashes, so a directory counts as managed when any checkout lives under it.
func (s *CleanService) findUnmanaged(path string, managed map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read container dir: %w", err)
	}

	prefixes := map[string]struct{}{}
	for name := range managed {
		prefixes[name] = struct{}{}
		for dir := filepath.Dir(name); dir != "."; dir = filepath.Dir(dir) {
			prefixes[dir] = struct{}{}
		}
	}

	var unmanaged []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == domain.ContainerDirectory {
			continue
		}
		if _, ok := prefixes[entry.Name()]; ok {
			continue
		}
		unmanaged = append(unmanaged, entry.Name())
	}
	sort.Strings(unmanaged)
	return unmanaged, nil
}
