package reconcile

import (
	"context"

	"github.com/repofleet/repofleet/internal/domain"
)

type VCS interface {
	IsRepository(path string) bool
	Init(ctx context.Context, path string, worktreeSetup bool) error
	Clone(ctx context.Context, path, url, remoteName string, worktreeSetup bool) error
	Remotes(ctx context.Context, path string, worktreeSetup bool) ([]domain.Remote, error)
	AddRemote(ctx context.Context, path string, worktreeSetup bool, name, url string) error
	SetRemoteURL(ctx context.Context, path string, worktreeSetup bool, name, url string) error
	DeleteRemote(ctx context.Context, path string, worktreeSetup bool, name string) error
}
