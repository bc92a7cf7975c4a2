package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/repofleet/repofleet/internal/domain"
)

var ErrRemoteNotFound = errors.New("remote not found")

// Remotes returns the configured remotes, sorted by name. Remotes whose URL
// scheme cannot be classified keep an empty kind so callers can still report
// on them.
func (s *Store) Remotes(ctx context.Context, path string, worktreeSetup bool) ([]domain.Remote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return nil, err
	}
	list, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}

	remotes := make([]domain.Remote, 0, len(list))
	for _, remote := range list {
		cfg := remote.Config()
		if len(cfg.URLs) == 0 {
			continue
		}
		kind, _ := domain.DetectRemoteKind(cfg.URLs[0])
		remotes = append(remotes, domain.Remote{Name: cfg.Name, URL: cfg.URLs[0], Kind: kind})
	}
	sort.Slice(remotes, func(i, j int) bool { return remotes[i].Name < remotes[j].Name })
	return remotes, nil
}

// AddRemote creates a named remote.
func (s *Store) AddRemote(ctx context.Context, path string, worktreeSetup bool, name, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if err != nil {
		return fmt.Errorf("add remote %s: %w", name, err)
	}
	return nil
}

// SetRemoteURL rewrites the URL of an existing remote in place.
func (s *Store) SetRemoteURL(ctx context.Context, path string, worktreeSetup bool, name, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return err
	}
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read repo config: %w", err)
	}
	remote, ok := cfg.Remotes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}
	remote.URLs = []string{url}
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("update remote %s: %w", name, err)
	}
	return nil
}

// DeleteRemote removes a named remote.
func (s *Store) DeleteRemote(ctx context.Context, path string, worktreeSetup bool, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return err
	}
	if err := repo.DeleteRemote(name); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
		}
		return fmt.Errorf("delete remote %s: %w", name, err)
	}
	return nil
}
