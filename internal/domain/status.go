package domain

import (
	"fmt"
	"strings"
)

// RepoChanges is a dirty-state summary of a working tree.
type RepoChanges struct {
	New      int
	Modified int
	Deleted  int
}

func (c RepoChanges) Clean() bool {
	return c.New == 0 && c.Modified == 0 && c.Deleted == 0
}

func (c RepoChanges) String() string {
	if c.Clean() {
		return "no changes"
	}
	parts := make([]string, 0, 3)
	if c.New > 0 {
		parts = append(parts, fmt.Sprintf("%d new", c.New))
	}
	if c.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", c.Modified))
	}
	if c.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", c.Deleted))
	}
	return strings.Join(parts, ", ")
}

// TrackingStatus positions a local branch relative to its tracking branch.
type TrackingStatus struct {
	Ahead  int
	Behind int
}

func (s TrackingStatus) UpToDate() bool {
	return s.Ahead == 0 && s.Behind == 0
}

func (s TrackingStatus) String() string {
	switch {
	case s.UpToDate():
		return "up to date"
	case s.Ahead > 0 && s.Behind > 0:
		return fmt.Sprintf("[+%d/-%d]", s.Ahead, s.Behind)
	case s.Ahead > 0:
		return fmt.Sprintf("[+%d]", s.Ahead)
	default:
		return fmt.Sprintf("[-%d]", s.Behind)
	}
}

// BranchStatus pairs a local branch with its tracking branch, if any.
type BranchStatus struct {
	Name     string
	Upstream string
	Tracking *TrackingStatus
}

// Health is the single aggregate symbol shown per repository or worktree.
type Health string

const (
	HealthOK        Health = "ok"
	HealthAttention Health = "attention"
	HealthError     Health = "error"
)

// RepoStatus is the read-only summary of one repository.
type RepoStatus struct {
	Path          string
	WorktreeSetup bool
	Missing       bool
	Empty         bool
	Head          string
	Changes       *RepoChanges
	Remotes       []Remote
	Branches      []BranchStatus
	WorktreeCount int
}

func (s RepoStatus) Health() Health {
	if s.Missing {
		return HealthError
	}
	if s.Changes != nil && !s.Changes.Clean() {
		return HealthAttention
	}
	for _, branch := range s.Branches {
		if branch.Tracking != nil && !branch.Tracking.UpToDate() {
			return HealthAttention
		}
	}
	return HealthOK
}

// WorktreeStatus is the read-only summary of one worktree of a container.
type WorktreeStatus struct {
	Name     string
	Missing  bool
	Changes  RepoChanges
	Upstream string
	Tracking *TrackingStatus
}

func (s WorktreeStatus) Health() Health {
	if s.Missing {
		return HealthError
	}
	if !s.Changes.Clean() {
		return HealthAttention
	}
	if s.Tracking != nil && !s.Tracking.UpToDate() {
		return HealthAttention
	}
	return HealthOK
}
