package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	findapp "github.com/repofleet/repofleet/internal/app/find"
	"github.com/repofleet/repofleet/internal/app/paths"
	reconcileapp "github.com/repofleet/repofleet/internal/app/reconcile"
	worktreeapp "github.com/repofleet/repofleet/internal/app/worktree"
	"github.com/repofleet/repofleet/internal/config"
	"github.com/repofleet/repofleet/internal/domain"
	"github.com/repofleet/repofleet/internal/infra/forge"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindRefused    ErrorKind = "refused"
	KindConflict   ErrorKind = "conflict"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitRefused  = 4
	ExitConflict = 5
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, worktreeapp.ErrWorktreeNotFound),
		errors.Is(err, worktreeapp.ErrNotAWorktreeRepo),
		errors.Is(err, config.ErrConfigNotFound):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, worktreeapp.ErrWorktreeDirty),
		errors.Is(err, worktreeapp.ErrBranchUnmerged),
		errors.Is(err, worktreeapp.ErrIgnoredFilesPresent):
		return ExitError{Code: ExitRefused, Kind: KindRefused, Err: err}
	case errors.Is(err, worktreeapp.ErrWorktreeExists),
		errors.Is(err, worktreeapp.ErrDirectoryOccupied),
		errors.Is(err, worktreeapp.ErrAlreadyWorktreeRepo),
		errors.Is(err, reconcileapp.ErrPathOccupied):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, paths.ErrRepoPathRequired),
		errors.Is(err, config.ErrConfigPathRequired),
		errors.Is(err, config.ErrNoTrees),
		errors.Is(err, config.ErrInvalidDocument),
		errors.Is(err, config.ErrDefaultRemoteRequired),
		errors.Is(err, worktreeapp.ErrInvalidTrackSpec),
		errors.Is(err, forge.ErrUnknownProvider),
		errors.Is(err, forge.ErrTokenRequired),
		errors.Is(err, forge.ErrEmptyFilter),
		errors.Is(err, findapp.ErrRootRequired),
		errors.Is(err, domain.ErrTreeRootRequired),
		errors.Is(err, domain.ErrRepoNameRequired),
		errors.Is(err, domain.ErrRemoteNameRequired),
		errors.Is(err, domain.ErrRemoteURLRequired),
		errors.Is(err, domain.ErrDuplicateRemote),
		errors.Is(err, domain.ErrUnknownRemoteKind),
		errors.Is(err, domain.ErrLocalRemoteUnsupported),
		errors.Is(err, domain.ErrInvalidWorktreeName):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
