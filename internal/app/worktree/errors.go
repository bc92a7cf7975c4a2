package worktree

import "errors"

var ErrNotAWorktreeRepo = errors.New("repository is not worktree-managed")
var ErrAlreadyWorktreeRepo = errors.New("repository is already worktree-managed")
var ErrWorktreeExists = errors.New("worktree already exists")
var ErrWorktreeNotFound = errors.New("worktree not found")
var ErrDirectoryOccupied = errors.New("directory already exists")
var ErrInvalidTrackSpec = errors.New("track spec must be remote/branch")

// Safety refusals: the operation was understood but declined to avoid losing
// work. They map to their own exit code, distinct from failures.
var ErrWorktreeDirty = errors.New("worktree has uncommitted changes")
var ErrBranchUnmerged = errors.New("branch contains unpushed, unmerged commits")
var ErrIgnoredFilesPresent = errors.New("repository contains ignored files")
