package find

import (
	"context"
	"log/slog"
	"sort"

	"github.com/repofleet/repofleet/internal/domain"
)

type RemoteService struct {
	forge  Forge
	logger *slog.Logger
}

func NewRemoteService(forge Forge, logger *slog.Logger) *RemoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteService{forge: forge, logger: logger}
}

type RemoteRequest struct {
	Root          string
	Filter        domain.ForgeFilter
	Kind          domain.RemoteKind
	RemoteName    string
	WorktreeSetup bool
}

// Find queries the hosting provider and builds a declaration for every
// matching project, each with a single origin remote of the requested kind.
func (s *RemoteService) Find(ctx context.Context, req RemoteRequest) (domain.Tree, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tree{}, err
	}
	if req.Root == "" {
		return domain.Tree{}, ErrRootRequired
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.RemoteKindSSH
	}
	remoteName := req.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}

	projects, err := s.forge.ListProjects(ctx, req.Filter)
	if err != nil {
		return domain.Tree{}, err
	}

	tree := domain.Tree{Root: req.Root}
	for _, project := range projects {
		url := project.URL(kind)
		if url == "" {
			s.logger.Warn("project has no clone url", "provider", s.forge.Name(), "project", project.FullName(), "kind", kind)
			continue
		}
		tree.Repos = append(tree.Repos, domain.Repo{
			Name:          project.Name,
			Namespace:     project.Namespace,
			WorktreeSetup: req.WorktreeSetup,
			Remotes:       []domain.Remote{{Name: remoteName, URL: url, Kind: kind}},
		})
	}

	sort.Slice(tree.Repos, func(i, j int) bool { return tree.Repos[i].FullName() < tree.Repos[j].FullName() })
	return tree, nil
}
