package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrRepoPathRequired = errors.New("repo path is required")
var ErrHomeNotSet = errors.New("HOME is not set")

func NormalizeRepoPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrRepoPathRequired
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve repo path: %w", err)
	}

	return absPath, nil
}

// ExpandPath resolves a leading tilde and $HOME/${HOME} references in tree
// roots. Other variables are left untouched; a tilde in the middle of a path
// is not an expansion.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrRepoPathRequired
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}

	if strings.Contains(path, "$HOME") || strings.Contains(path, "${HOME}") {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		path = strings.ReplaceAll(path, "${HOME}", home)
		path = strings.ReplaceAll(path, "$HOME", home)
	}

	return path, nil
}

func homeDir() (string, error) {
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return "", ErrHomeNotSet
	}
	return home, nil
}
