package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/repofleet/repofleet/internal/domain"
)

var ErrNoDefaultBranch = errors.New("no default branch found")

// LocalBranches lists local branch names, sorted.
func (s *Store) LocalBranches(ctx context.Context, path string, worktreeSetup bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return gitLines(ctx, s.GitDir(path, worktreeSetup), "for-each-ref", "--format=%(refname:short)", "--sort=refname", "refs/heads")
}

// LocalBranchExists reports whether a local branch exists.
func (s *Store) LocalBranchExists(ctx context.Context, path string, worktreeSetup bool, branch string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup branch %s: %w", branch, err)
	}
	return true, nil
}

// RemoteBranchExists reports whether remote/branch exists as a
// remote-tracking ref.
func (s *Store) RemoteBranchExists(ctx context.Context, path string, worktreeSetup bool, remote, branch string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup remote branch %s/%s: %w", remote, branch, err)
	}
	return true, nil
}

// CreateBranch creates a local branch at the given start point. The start
// point may be a branch name, a remote-tracking ref or empty for HEAD.
func (s *Store) CreateBranch(ctx context.Context, path string, worktreeSetup bool, branch, startPoint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := []string{"branch", branch}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	_, err := runGit(ctx, s.GitDir(path, worktreeSetup), args...)
	return err
}

// DeleteBranch force-deletes a local branch.
func (s *Store) DeleteBranch(ctx context.Context, path string, worktreeSetup bool, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := runGit(ctx, s.GitDir(path, worktreeSetup), "branch", "-D", branch)
	return err
}

// HeadBranch returns the branch HEAD points at, or empty for a detached or
// unborn HEAD on an empty repository.
func (s *Store) HeadBranch(ctx context.Context, path string, worktreeSetup bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return "", err
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", nil
}

// BranchUpstream returns the configured upstream of a local branch.
func (s *Store) BranchUpstream(ctx context.Context, path string, worktreeSetup bool, branch string) (domain.Upstream, error) {
	if err := ctx.Err(); err != nil {
		return domain.Upstream{}, err
	}

	repo, err := s.open(path, worktreeSetup)
	if err != nil {
		return domain.Upstream{}, err
	}
	cfg, err := repo.Config()
	if err != nil {
		return domain.Upstream{}, fmt.Errorf("read repo config: %w", err)
	}
	branchCfg, ok := cfg.Branches[branch]
	if !ok || branchCfg.Remote == "" || branchCfg.Merge == "" {
		return domain.Upstream{}, fmt.Errorf("%w: %s", domain.ErrNoUpstream, branch)
	}
	return domain.Upstream{Remote: branchCfg.Remote, Branch: branchCfg.Merge.Short()}, nil
}

// SetUpstream points a local branch at remote/branch.
func (s *Store) SetUpstream(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error {
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
	if cfg.Branches == nil {
		cfg.Branches = map[string]*config.Branch{}
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(remoteBranch),
	}
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("set upstream for %s: %w", branch, err)
	}
	return nil
}

// PushBranch pushes a local branch to remote under remoteBranch, creating it
// there if needed.
func (s *Store) PushBranch(ctx context.Context, path string, worktreeSetup bool, branch, remote, remoteBranch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, remoteBranch)
	_, err := runGit(ctx, s.GitDir(path, worktreeSetup), "push", remote, refspec)
	return err
}

// AheadBehind counts commits that local has over upstream and vice versa.
func (s *Store) AheadBehind(ctx context.Context, path string, worktreeSetup bool, local, upstream string) (domain.TrackingStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrackingStatus{}, err
	}

	out, err := runGit(ctx, s.GitDir(path, worktreeSetup), "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return domain.TrackingStatus{}, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return domain.TrackingStatus{}, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("parse ahead count: %w", err)
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("parse behind count: %w", err)
	}
	return domain.TrackingStatus{Ahead: ahead, Behind: behind}, nil
}

// IsAncestor reports whether ancestor is reachable from descendant, i.e.
// ancestor's history is fully contained in descendant's.
func (s *Store) IsAncestor(ctx context.Context, path string, worktreeSetup bool, ancestor, descendant string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	out, err := runGit(ctx, s.GitDir(path, worktreeSetup), "rev-list", "--count", ancestor, "--not", descendant)
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return false, fmt.Errorf("parse rev-list count: %w", err)
	}
	return count == 0, nil
}

// DefaultBranch resolves the repository's primary branch: the first
// persistent branch that exists locally, then main, then master, then the
// remote HEAD of the first remote.
func (s *Store) DefaultBranch(ctx context.Context, path string, worktreeSetup bool, persistent domain.PersistentBranches) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	candidates := append([]string{}, persistent...)
	candidates = append(candidates, "main", "master")
	for _, candidate := range candidates {
		exists, err := s.LocalBranchExists(ctx, path, worktreeSetup, candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}

	remotes, err := s.Remotes(ctx, path, worktreeSetup)
	if err != nil {
		return "", err
	}
	for _, remote := range remotes {
		out, err := runGit(ctx, s.GitDir(path, worktreeSetup), "symbolic-ref", "--short", "refs/remotes/"+remote.Name+"/HEAD")
		if err != nil {
			continue
		}
		branch := strings.TrimPrefix(out, remote.Name+"/")
		if branch != "" {
			return branch, nil
		}
	}
	return "", ErrNoDefaultBranch
}
