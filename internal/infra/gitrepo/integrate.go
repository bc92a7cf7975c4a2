package gitrepo

import (
	"context"
	"errors"

	"github.com/repofleet/repofleet/internal/domain"
)

var ErrRebaseConflict = errors.New("rebase stopped on conflicts")

// FastForward advances the branch checked out in dir to target. Fails when
// the merge would not be a fast-forward.
func (s *Store) FastForward(ctx context.Context, dir, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := runGit(ctx, dir, "merge", "--ff-only", target); err != nil {
		return errors.Join(domain.ErrNotFastForward, err)
	}
	return nil
}

// Rebase replays the branch checked out in dir onto target. On conflict the
// rebase is aborted so the worktree is left as it was.
func (s *Store) Rebase(ctx context.Context, dir, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := runGit(ctx, dir, "rebase", target); err != nil {
		if _, abortErr := runGit(ctx, dir, "rebase", "--abort"); abortErr == nil {
			return errors.Join(ErrRebaseConflict, err)
		}
		return err
	}
	return nil
}
