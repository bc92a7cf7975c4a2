package worktree

import (
	"context"
	"errors"
	"fmt"

	"github.com/repofleet/repofleet/internal/domain"
)

// guardDeletion allows deletion only when nothing would be lost: the checkout
// is clean, and every commit on the branch is already in a persistent branch,
// or in the default branch, or safely on the branch's own upstream.
func guardDeletion(ctx context.Context, vcs VCS, path string, checkout domain.Checkout, persistent domain.PersistentBranches) error {
	changes, err := vcs.Changes(ctx, checkout.Path)
	if err != nil {
		return err
	}
	if !changes.Clean() {
		return fmt.Errorf("%w: %s (%s)", ErrWorktreeDirty, checkout.Branch, changes)
	}

	// With persistent branches configured, they alone decide: the branch must
	// be contained in one of them, and no upstream is required. A persistent
	// branch is always contained in itself.
	if len(persistent) > 0 {
		if persistent.Contains(checkout.Branch) {
			return nil
		}
		for _, target := range persistent {
			merged, err := vcs.IsAncestor(ctx, path, true, checkout.Branch, target)
			if err != nil {
				return err
			}
			if merged {
				return nil
			}
		}
		return fmt.Errorf("%w: %s is not merged into any persistent branch", ErrBranchUnmerged, checkout.Branch)
	}

	defaultBranch, err := vcs.DefaultBranch(ctx, path, true, persistent)
	if err != nil {
		return err
	}
	if checkout.Branch != defaultBranch {
		merged, err := vcs.IsAncestor(ctx, path, true, checkout.Branch, defaultBranch)
		if err != nil {
			return err
		}
		if merged {
			return nil
		}
	}

	upstream, err := vcs.BranchUpstream(ctx, path, true, checkout.Branch)
	if errors.Is(err, domain.ErrNoUpstream) {
		return fmt.Errorf("%w: %s is not merged and has no upstream", ErrBranchUnmerged, checkout.Branch)
	}
	if err != nil {
		return err
	}
	tracking, err := vcs.AheadBehind(ctx, path, true, checkout.Branch, upstream.String())
	if err != nil {
		return err
	}
	if !tracking.UpToDate() {
		return fmt.Errorf("%w: %s is %s relative to %s", ErrBranchUnmerged, checkout.Branch, tracking, upstream)
	}
	return nil
}
