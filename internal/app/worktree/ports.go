package worktree

import (
	"context"

	"github.com/repofleet/repofleet/internal/domain"
)

type VCS interface {
	IsContainer(path string) bool
	IsRepository(path string) bool

	ListWorktrees(ctx context.Context, path string) ([]domain.Checkout, error)
	AddWorktree(ctx context.Context, path, name, branch string) error
	RemoveWorktree(ctx context.Context, path, name string) error
	PruneWorktrees(ctx context.Context, path string) error

	LocalBranchExists(ctx context.Context, path string, worktreeSetup bool, branch string) (bool, error)
	RemoteBranchExists(ctx context.Context, path string, worktreeSetup bool, remote, branch string) (bool, error)
	CreateBranch(ctx context.Context, path string, worktreeSetup bool, branch, startPoint string) error
	DeleteBranch(ctx context.Context, path string, worktreeSetup bool, branch string) error
	DefaultBranch(ctx context.Context, path string, worktreeSetup bool, persistent domain.PersistentBranches) (string, error)

	BranchUpstream(ctx context.Context, path string, worktreeSetup bool, branch string) (domain.Upstream, error)
	SetUpstream(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error
	PushBranch(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error
	AheadBehind(ctx context.Context, path string, worktreeSetup bool, local, upstream string) (domain.TrackingStatus, error)
	IsAncestor(ctx context.Context, path string, worktreeSetup bool, ancestor, descendant string) (bool, error)

	Changes(ctx context.Context, dir string) (domain.RepoChanges, error)
	HasIgnoredFiles(ctx context.Context, dir string) (bool, error)

	FetchAll(ctx context.Context, path string, worktreeSetup bool) error
	StashPush(ctx context.Context, dir string) (domain.StashToken, error)
	StashPop(ctx context.Context, dir string, token domain.StashToken) error
	FastForward(ctx context.Context, dir, target string) error
	Rebase(ctx context.Context, dir, target string) error

	Convert(ctx context.Context, path string) error
}
