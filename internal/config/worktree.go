package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/repofleet/repofleet/internal/domain"
)

var ErrDefaultRemoteRequired = errors.New("track.default_remote is required when tracking is configured")

type worktreeRootDocument struct {
	Track              *trackingDocument `toml:"track"`
	PersistentBranches []string          `toml:"persistent_branches"`
}

type trackingDocument struct {
	Default             bool   `toml:"default"`
	DefaultRemote       string `toml:"default_remote"`
	DefaultRemotePrefix string `toml:"default_remote_prefix"`
}

// LoadWorktreeRootConfig reads the optional repository-local configuration
// from the container root. A missing file is not an error; it returns nil.
func LoadWorktreeRootConfig(dir string) (*domain.WorktreeRootConfig, error) {
	path := filepath.Join(dir, domain.WorktreeConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read worktree config %q: %w", path, err)
	}

	var doc worktreeRootDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse worktree config %q: %w", path, err)
	}

	cfg := &domain.WorktreeRootConfig{
		PersistentBranches: domain.PersistentBranches(doc.PersistentBranches),
	}
	if doc.Track != nil {
		if strings.TrimSpace(doc.Track.DefaultRemote) == "" {
			return nil, ErrDefaultRemoteRequired
		}
		cfg.Track = &domain.TrackingConfig{
			Default:             doc.Track.Default,
			DefaultRemote:       doc.Track.DefaultRemote,
			DefaultRemotePrefix: doc.Track.DefaultRemotePrefix,
		}
	}
	return cfg, nil
}
