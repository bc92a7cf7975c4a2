package domain

import "errors"

var ErrTreeRootRequired = errors.New("tree root is required")
var ErrRepoNameRequired = errors.New("repo name is required")
var ErrRemoteNameRequired = errors.New("remote name is required")
var ErrRemoteURLRequired = errors.New("remote url is required")
var ErrDuplicateRemote = errors.New("duplicate remote name")
var ErrUnknownRemoteKind = errors.New("could not detect remote kind")
var ErrLocalRemoteUnsupported = errors.New("local remotes are not supported")
var ErrInvalidWorktreeName = errors.New("invalid worktree name")
var ErrNoUpstream = errors.New("branch has no upstream")
var ErrNotFastForward = errors.New("branch cannot be fast-forwarded")
