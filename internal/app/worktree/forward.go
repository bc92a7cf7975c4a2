package worktree

import (
	"context"
	"errors"
	"fmt"

	"github.com/repofleet/repofleet/internal/domain"
)

// BranchUpdate records the outcome of updating one worktree's branch. A set
// Reason means the worktree was left alone; Refused marks the reasons that
// are safety refusals rather than mere no-ops. Err is reserved for backend
// failures.
type BranchUpdate struct {
	Name    string
	Branch  string
	Updated bool
	Reason  string
	Refused bool
	Err     error
}

// forwardBranch brings the branch checked out in checkout up to date with its
// upstream, by fast-forward or rebase. A dirty worktree is refused unless
// stash is set, in which case local changes are stashed around the update and
// restored afterwards, even when the update fails.
func forwardBranch(ctx context.Context, vcs VCS, path string, checkout domain.Checkout, name string, rebase, stash bool) BranchUpdate {
	update := BranchUpdate{Name: name, Branch: checkout.Branch}

	upstream, err := vcs.BranchUpstream(ctx, path, true, checkout.Branch)
	if errors.Is(err, domain.ErrNoUpstream) {
		update.Reason = "no tracking branch"
		return update
	}
	if err != nil {
		update.Err = err
		return update
	}

	tracking, err := vcs.AheadBehind(ctx, path, true, checkout.Branch, upstream.String())
	if err != nil {
		update.Err = err
		return update
	}
	if tracking.Behind == 0 {
		update.Reason = "up to date"
		return update
	}

	changes, err := vcs.Changes(ctx, checkout.Path)
	if err != nil {
		update.Err = err
		return update
	}
	if !changes.Clean() && !stash {
		update.Reason = "contains changes"
		update.Refused = true
		return update
	}

	token, err := vcs.StashPush(ctx, checkout.Path)
	if err != nil {
		update.Err = err
		return update
	}

	if rebase {
		err = vcs.Rebase(ctx, checkout.Path, upstream.String())
	} else {
		err = vcs.FastForward(ctx, checkout.Path, upstream.String())
	}
	popErr := vcs.StashPop(ctx, checkout.Path, token)

	switch {
	case err != nil && popErr != nil:
		update.Err = fmt.Errorf("%w (restoring stashed changes also failed: %v)", err, popErr)
	case popErr != nil:
		update.Err = popErr
	case errors.Is(err, domain.ErrNotFastForward):
		update.Reason = "cannot be fast-forwarded"
		update.Refused = true
	case err != nil:
		update.Err = err
	default:
		update.Updated = true
	}
	return update
}
