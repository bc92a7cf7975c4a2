package gitrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
	"github.com/repofleet/repofleet/internal/infra/ident"
)

const stashMessagePrefix = "repofleet-autostash-"

var stashIDs = ident.NewULIDGenerator()

// StashPush stashes all local changes, including untracked files, in the
// worktree at dir. Returns an empty token when there was nothing to stash.
// The ULID in the stash message lets StashPop find exactly the entry this
// call pushed even if other stashes landed in between.
func (s *Store) StashPush(ctx context.Context, dir string) (domain.StashToken, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := stashIDs.NewID()
	if err != nil {
		return "", fmt.Errorf("stash token: %w", err)
	}
	token := domain.StashToken(id)

	before, err := s.stashCount(ctx, dir)
	if err != nil {
		return "", err
	}
	_, err = runGit(ctx, dir, "stash", "push", "--include-untracked", "--message", stashMessagePrefix+string(token))
	if err != nil {
		return "", err
	}
	after, err := s.stashCount(ctx, dir)
	if err != nil {
		return "", err
	}
	if after == before {
		return "", nil
	}
	return token, nil
}

// StashPop restores the stash identified by token. A zero token is a no-op.
func (s *Store) StashPop(ctx context.Context, dir string, token domain.StashToken) error {
	if token == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lines, err := gitLines(ctx, dir, "stash", "list", "--format=%gd %gs")
	if err != nil {
		return err
	}
	for _, line := range lines {
		if strings.Contains(line, stashMessagePrefix+string(token)) {
			ref, _, _ := strings.Cut(line, " ")
			_, err := runGit(ctx, dir, "stash", "pop", ref)
			return err
		}
	}
	return fmt.Errorf("stash entry for token %s not found", token)
}

func (s *Store) stashCount(ctx context.Context, dir string) (int, error) {
	lines, err := gitLines(ctx, dir, "stash", "list", "--format=%gd")
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}
