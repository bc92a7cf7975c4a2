package gitrepo

import (
	"context"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

// Changes summarizes uncommitted work in the checkout at dir. Porcelain
// status is used because it behaves identically in plain checkouts and
// linked worktrees.
func (s *Store) Changes(ctx context.Context, dir string) (domain.RepoChanges, error) {
	if err := ctx.Err(); err != nil {
		return domain.RepoChanges{}, err
	}

	lines, err := gitLines(ctx, dir, "status", "--porcelain")
	if err != nil {
		return domain.RepoChanges{}, err
	}
	return countChanges(lines), nil
}

func countChanges(lines []string) domain.RepoChanges {
	var changes domain.RepoChanges
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		code := line[:2]
		switch {
		case code == "??":
			changes.New++
		case strings.HasPrefix(code, "A"):
			changes.New++
		case strings.Contains(code, "D"):
			changes.Deleted++
		default:
			changes.Modified++
		}
	}
	return changes
}

// HasIgnoredFiles reports whether the checkout at dir contains files matched
// by its ignore rules.
func (s *Store) HasIgnoredFiles(ctx context.Context, dir string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	lines, err := gitLines(ctx, dir, "status", "--porcelain", "--ignored")
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "!!") {
			return true, nil
		}
	}
	return false, nil
}

// RepoStatus assembles the full health report for one repository: HEAD,
// uncommitted changes, remotes and per-branch tracking state. Only local
// information is consulted.
func (s *Store) RepoStatus(ctx context.Context, path string, worktreeSetup bool) (domain.RepoStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.RepoStatus{}, err
	}

	status := domain.RepoStatus{Path: path, WorktreeSetup: worktreeSetup}

	empty, err := s.IsEmpty(ctx, path, worktreeSetup)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	status.Empty = empty

	remotes, err := s.Remotes(ctx, path, worktreeSetup)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	status.Remotes = remotes

	if worktreeSetup {
		entries, err := s.ListWorktrees(ctx, path)
		if err != nil {
			return domain.RepoStatus{}, err
		}
		for _, entry := range entries {
			if !entry.Bare {
				status.WorktreeCount++
			}
		}
	} else {
		head, err := s.HeadBranch(ctx, path, worktreeSetup)
		if err != nil {
			return domain.RepoStatus{}, err
		}
		status.Head = head

		if !empty {
			changes, err := s.Changes(ctx, path)
			if err != nil {
				return domain.RepoStatus{}, err
			}
			status.Changes = &changes
		}
	}

	if empty {
		return status, nil
	}

	branches, err := s.LocalBranches(ctx, path, worktreeSetup)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	for _, branch := range branches {
		branchStatus := domain.BranchStatus{Name: branch}
		upstream, err := s.BranchUpstream(ctx, path, worktreeSetup, branch)
		if err == nil {
			branchStatus.Upstream = upstream.String()
			tracking, err := s.AheadBehind(ctx, path, worktreeSetup, branch, upstream.String())
			if err == nil {
				branchStatus.Tracking = &tracking
			}
		}
		status.Branches = append(status.Branches, branchStatus)
	}
	return status, nil
}
