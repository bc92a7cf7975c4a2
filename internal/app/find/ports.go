package find

import (
	"context"

	"github.com/repofleet/repofleet/internal/domain"
)

type VCS interface {
	IsRepository(path string) bool
	IsContainer(path string) bool
	Remotes(ctx context.Context, path string, worktreeSetup bool) ([]domain.Remote, error)
}

type Forge interface {
	Name() string
	ListProjects(ctx context.Context, filter domain.ForgeFilter) ([]domain.ForgeProject, error)
}
