package status

import (
	"context"

	"github.com/repofleet/repofleet/internal/domain"
)

type VCS interface {
	IsRepository(path string) bool
	IsContainer(path string) bool
	RepoStatus(ctx context.Context, path string, worktreeSetup bool) (domain.RepoStatus, error)
	ListWorktrees(ctx context.Context, path string) ([]domain.Checkout, error)
	Changes(ctx context.Context, dir string) (domain.RepoChanges, error)
	BranchUpstream(ctx context.Context, path string, worktreeSetup bool, branch string) (domain.Upstream, error)
	AheadBehind(ctx context.Context, path string, worktreeSetup bool, local, upstream string) (domain.TrackingStatus, error)
}
