package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

var ErrNotAWorktreeRepo = errors.New("repository is not worktree-managed")

type Service struct {
	vcs    VCS
	logger *slog.Logger
}

func NewService(vcs VCS, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{vcs: vcs, logger: logger}
}

// TreeStatus summarizes every declared repository. Repositories missing from
// disk appear with Missing set instead of failing the whole report, and only
// local information is consulted so the report works offline.
func (s *Service) TreeStatus(ctx context.Context, trees []domain.Tree) ([]domain.RepoStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var statuses []domain.RepoStatus
	for _, tree := range trees {
		root, err := paths.ExpandPath(tree.Root)
		if err != nil {
			return nil, err
		}
		for _, repo := range tree.Repos {
			path := filepath.Join(root, repo.FullName())
			if !s.vcs.IsRepository(path) {
				statuses = append(statuses, domain.RepoStatus{Path: path, WorktreeSetup: repo.WorktreeSetup, Missing: true})
				continue
			}
			status, err := s.vcs.RepoStatus(ctx, path, s.vcs.IsContainer(path))
			if err != nil {
				return nil, fmt.Errorf("status of %s: %w", path, err)
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

// RepoStatus summarizes a single repository in either layout.
func (s *Service) RepoStatus(ctx context.Context, path string) (domain.RepoStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.RepoStatus{}, err
	}

	path, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	return s.vcs.RepoStatus(ctx, path, s.vcs.IsContainer(path))
}

// WorktreeStatus summarizes every worktree of a container: dirty state and
// position relative to the branch's upstream.
func (s *Service) WorktreeStatus(ctx context.Context, path string) ([]domain.WorktreeStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return nil, err
	}
	if !s.vcs.IsContainer(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotAWorktreeRepo, path)
	}

	checkouts, err := s.vcs.ListWorktrees(ctx, path)
	if err != nil {
		return nil, err
	}

	var statuses []domain.WorktreeStatus
	for _, checkout := range checkouts {
		if checkout.Bare {
			continue
		}
		name, relErr := filepath.Rel(path, checkout.Path)
		if relErr != nil {
			name = filepath.Base(checkout.Path)
		}
		status := domain.WorktreeStatus{Name: name}

		changes, err := s.vcs.Changes(ctx, checkout.Path)
		if err != nil {
			status.Missing = true
			statuses = append(statuses, status)
			continue
		}
		status.Changes = changes

		upstream, err := s.vcs.BranchUpstream(ctx, path, true, checkout.Branch)
		if err == nil {
			status.Upstream = upstream.String()
			tracking, err := s.vcs.AheadBehind(ctx, path, true, checkout.Branch, upstream.String())
			if err == nil {
				status.Tracking = &tracking
			}
		} else if !errors.Is(err, domain.ErrNoUpstream) {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
