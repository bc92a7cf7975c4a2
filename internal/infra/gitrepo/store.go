package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/repofleet/repofleet/internal/domain"
)

var ErrNotARepository = errors.New("not a git repository")
var ErrNotAContainer = errors.New("not a worktree container")

// Store is the VCS backend. It is stateless; every method addresses a
// repository by path. Operations that go-git implements natively (open,
// clone, remotes, refs, status) go through it; worktree, stash, rebase and
// merge operations shell out to git, which does not ship those in go-git.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// GitDir resolves the actual git directory for a repository path, honoring
// the container layout for worktree-managed repositories.
func (s *Store) GitDir(path string, worktreeSetup bool) string {
	if worktreeSetup {
		return filepath.Join(path, domain.ContainerDirectory)
	}
	return path
}

// IsContainer reports whether the repository at path uses the worktree
// container layout.
func (s *Store) IsContainer(path string) bool {
	info, err := os.Stat(filepath.Join(path, domain.ContainerDirectory))
	return err == nil && info.IsDir()
}

// IsRepository reports whether path holds a repository in either layout.
func (s *Store) IsRepository(path string) bool {
	if s.IsContainer(path) {
		return true
	}
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func (s *Store) open(path string, worktreeSetup bool) (*git.Repository, error) {
	repo, err := git.PlainOpen(s.GitDir(path, worktreeSetup))
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			if worktreeSetup {
				return nil, fmt.Errorf("%w: %s", ErrNotAContainer, path)
			}
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("open git repo: %w", err)
	}
	return repo, nil
}

// Init creates a fresh repository, bare inside the container directory for
// worktree-managed repositories.
func (s *Store) Init(ctx context.Context, path string, worktreeSetup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.GitDir(path, worktreeSetup)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}

	if _, err := git.PlainInitWithOptions(target, &git.PlainInitOptions{Bare: worktreeSetup}); err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return fmt.Errorf("repository already exists: %w", err)
		}
		return fmt.Errorf("init git repo: %w", err)
	}

	if worktreeSetup {
		if err := s.setPushDefaultUpstream(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setPushDefaultUpstream(ctx context.Context, gitDir string) error {
	_, err := runGit(ctx, gitDir, "config", "push.default", "upstream")
	return err
}

// IsEmpty reports whether the repository has no references yet.
func (s *Store) IsEmpty(ctx context.Context, path string, worktreeSetup bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return false, err
	}
	iter, err := repo.References()
	if err != nil {
		return false, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	empty := true
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() || ref.Name().IsRemote() {
			empty = false
		}
		return nil
	})
	return empty, nil
}
