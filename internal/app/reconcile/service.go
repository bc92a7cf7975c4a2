package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/repofleet/repofleet/internal/app/paths"
	"github.com/repofleet/repofleet/internal/domain"
)

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

// Reconcile drives each tree's on-disk state toward its declaration. Every
// declared repository is visited even when an earlier one fails; the report
// carries one result per repository plus any repositories found on disk that
// no declaration covers.
func (s *Service) Reconcile(ctx context.Context, trees []domain.Tree) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var report Report
	for _, tree := range trees {
		root, err := paths.ExpandPath(tree.Root)
		if err != nil {
			return Report{}, err
		}

		declared := make(map[string]struct{}, len(tree.Repos))
		for _, repo := range tree.Repos {
			path := filepath.Join(root, repo.FullName())
			declared[path] = struct{}{}
			report.Results = append(report.Results, s.reconcileRepo(ctx, path, repo))
		}

		unmanaged, err := s.findUnmanaged(root, declared)
		if err != nil {
			s.logger.Warn("scan for unmanaged repos failed", "root", root, "error", err)
		}
		report.Unmanaged = append(report.Unmanaged, unmanaged...)
	}
	return report, nil
}

func (s *Service) reconcileRepo(ctx context.Context, path string, repo domain.Repo) RepoResult {
	result := RepoResult{Repo: repo.FullName(), Path: path}

	if !s.vcs.IsRepository(path) {
		actions, err := s.materialize(ctx, path, repo)
		result.Actions = actions
		if err != nil {
			result.Outcome = OutcomeFailed
			result.Err = err
			s.logger.Error("materialize repo failed", "repo", result.Repo, "error", err)
			return result
		}
		result.Outcome = OutcomeChanged
		return result
	}

	actions, err := s.alignRemotes(ctx, path, repo)
	result.Actions = actions
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		s.logger.Error("align remotes failed", "repo", result.Repo, "error", err)
		return result
	}
	if len(actions) == 0 {
		result.Outcome = OutcomeUnchanged
		return result
	}
	result.Outcome = OutcomeChanged
	return result
}

// materialize creates a repository that does not exist yet: a clone from the
// first declared remote, or a fresh init when no remotes are declared.
func (s *Service) materialize(ctx context.Context, path string, repo domain.Repo) ([]string, error) {
	if occupied, err := pathOccupied(path); err != nil {
		return nil, err
	} else if occupied {
		return nil, fmt.Errorf("%w: %s", ErrPathOccupied, path)
	}

	if len(repo.Remotes) == 0 {
		if err := s.vcs.Init(ctx, path, repo.WorktreeSetup); err != nil {
			return nil, err
		}
		return []string{"initialized empty repository"}, nil
	}

	first := repo.Remotes[0]
	if err := s.vcs.Clone(ctx, path, first.URL, first.Name, repo.WorktreeSetup); err != nil {
		return nil, err
	}
	actions := []string{fmt.Sprintf("cloned from %s (%s)", first.Name, first.URL)}

	for _, remote := range repo.Remotes[1:] {
		if err := s.vcs.AddRemote(ctx, path, repo.WorktreeSetup, remote.Name, remote.URL); err != nil {
			return actions, err
		}
		actions = append(actions, fmt.Sprintf("added remote %s (%s)", remote.Name, remote.URL))
	}
	return actions, nil
}

// alignRemotes diffs declared remotes against configured ones. Additions and
// URL updates run before removals, so a rename never leaves the repository
// without its remote in between.
func (s *Service) alignRemotes(ctx context.Context, path string, repo domain.Repo) ([]string, error) {
	actual, err := s.vcs.Remotes(ctx, path, repo.WorktreeSetup)
	if err != nil {
		return nil, err
	}

	actualByName := make(map[string]domain.Remote, len(actual))
	for _, remote := range actual {
		actualByName[remote.Name] = remote
	}
	declaredByName := make(map[string]struct{}, len(repo.Remotes))

	var actions []string
	for _, declared := range repo.Remotes {
		declaredByName[declared.Name] = struct{}{}
		existing, ok := actualByName[declared.Name]
		if !ok {
			if err := s.vcs.AddRemote(ctx, path, repo.WorktreeSetup, declared.Name, declared.URL); err != nil {
				return actions, err
			}
			actions = append(actions, fmt.Sprintf("added remote %s (%s)", declared.Name, declared.URL))
			continue
		}
		if existing.URL != declared.URL {
			if err := s.vcs.SetRemoteURL(ctx, path, repo.WorktreeSetup, declared.Name, declared.URL); err != nil {
				return actions, err
			}
			actions = append(actions, fmt.Sprintf("updated url of remote %s to %s", declared.Name, declared.URL))
		}
	}

	for _, remote := range actual {
		if _, ok := declaredByName[remote.Name]; ok {
			continue
		}
		if err := s.vcs.DeleteRemote(ctx, path, repo.WorktreeSetup, remote.Name); err != nil {
			return actions, err
		}
		actions = append(actions, fmt.Sprintf("deleted remote %s", remote.Name))
	}
	return actions, nil
}

// findUnmanaged walks the tree root looking for repositories that no
// declaration covers. The walk does not descend into repositories.
func (s *Service) findUnmanaged(root string, declared map[string]struct{}) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var unmanaged []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() || path == root {
			return nil
		}
		if !s.vcs.IsRepository(path) {
			return nil
		}
		if _, ok := declared[path]; !ok {
			unmanaged = append(unmanaged, path)
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(unmanaged)
	return unmanaged, nil
}

func pathOccupied(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read dir %s: %w", path, err)
	}
	return len(entries) > 0, nil
}
