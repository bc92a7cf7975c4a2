package find

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

type LocalService struct {
	vcs    VCS
	logger *slog.Logger
}

func NewLocalService(vcs VCS, logger *slog.Logger) *LocalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalService{vcs: vcs, logger: logger}
}

// Find walks root and builds a declaration for every repository below it,
// reading each repository's remotes as they are on disk. The walk does not
// descend into repositories, so nested checkouts stay invisible.
func (s *LocalService) Find(ctx context.Context, root string) (domain.Tree, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tree{}, err
	}

	root, err := paths.NormalizeRepoPath(root)
	if err != nil {
		return domain.Tree{}, err
	}

	tree := domain.Tree{Root: root}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() || path == root {
			return nil
		}
		if !s.vcs.IsRepository(path) {
			return nil
		}

		repo, buildErr := s.buildRepo(ctx, root, path)
		if buildErr != nil {
			return buildErr
		}
		tree.Repos = append(tree.Repos, repo)
		return filepath.SkipDir
	})
	if err != nil {
		return domain.Tree{}, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(tree.Repos, func(i, j int) bool { return tree.Repos[i].FullName() < tree.Repos[j].FullName() })
	return tree, nil
}

func (s *LocalService) buildRepo(ctx context.Context, root, path string) (domain.Repo, error) {
	worktreeSetup := s.vcs.IsContainer(path)
	remotes, err := s.vcs.Remotes(ctx, path, worktreeSetup)
	if err != nil {
		return domain.Repo{}, err
	}

	declared := make([]domain.Remote, 0, len(remotes))
	for _, remote := range remotes {
		if remote.Kind == "" {
			s.logger.Warn("skipping remote with unsupported url", "repo", path, "remote", remote.Name, "url", remote.URL)
			continue
		}
		declared = append(declared, remote)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return domain.Repo{}, err
	}
	repo := domain.Repo{
		Name:          filepath.Base(rel),
		WorktreeSetup: worktreeSetup,
		Remotes:       declared,
	}
	if dir := filepath.Dir(rel); dir != "." {
		repo.Namespace = filepath.ToSlash(dir)
	}
	return repo, nil
}
