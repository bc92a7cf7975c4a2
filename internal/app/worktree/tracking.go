package worktree

import (
	"fmt"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

// TrackingSpec is a resolved decision to track remote/branch. A nil spec
// means the new branch tracks nothing.
type TrackingSpec struct {
	Remote string
	Branch string
}

// TrackingRequest carries everything that influences the tracking decision
// for a new worktree branch.
type TrackingRequest struct {
	WorktreeName string
	NoTrack      bool
	Track        string
	Config       *domain.TrackingConfig
}

// ResolveTracking decides what a new worktree branch should track. The
// precedence is fixed: an explicit opt-out wins over an explicit spec, which
// wins over the repository-local default, which wins over nothing.
func ResolveTracking(req TrackingRequest) (*TrackingSpec, error) {
	if req.NoTrack {
		return nil, nil
	}

	if req.Track != "" {
		remote, branch, ok := strings.Cut(req.Track, "/")
		if !ok || remote == "" || branch == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTrackSpec, req.Track)
		}
		return &TrackingSpec{Remote: remote, Branch: branch}, nil
	}

	if req.Config != nil && req.Config.Default {
		branch := req.WorktreeName
		if req.Config.DefaultRemotePrefix != "" {
			branch = req.Config.DefaultRemotePrefix + "/" + req.WorktreeName
		}
		return &TrackingSpec{Remote: req.Config.DefaultRemote, Branch: branch}, nil
	}

	return nil, nil
}
