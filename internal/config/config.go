package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/repofleet/repofleet/internal/domain"
)

var ErrConfigPathRequired = errors.New("config path is required")
var ErrConfigNotFound = errors.New("config file not found")
var ErrNoTrees = errors.New("config contains no trees")
var ErrInvalidDocument = errors.New("config does not match the expected structure")

// Config is the declared-state document. The same structure round-trips
// through every supported format.
type Config struct {
	Trees []TreeConfig `toml:"trees" yaml:"trees" json:"trees"`
}

type TreeConfig struct {
	Root  string       `toml:"root" yaml:"root" json:"root"`
	Repos []RepoConfig `toml:"repos,omitempty" yaml:"repos,omitempty" json:"repos,omitempty"`
}

type RepoConfig struct {
	Name          string         `toml:"name" yaml:"name" json:"name"`
	WorktreeSetup bool           `toml:"worktree_setup" yaml:"worktree_setup" json:"worktree_setup"`
	Remotes       []RemoteConfig `toml:"remotes,omitempty" yaml:"remotes,omitempty" json:"remotes,omitempty"`
}

type RemoteConfig struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	URL  string `toml:"url" yaml:"url" json:"url"`
	Type string `toml:"type" yaml:"type" json:"type"`
}

// Load reads and decodes a declared-state document, picking the codec from
// the file extension. The document is validated structurally against the
// config schema and semantically against the domain rules.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, ErrConfigPathRequired
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	codec, err := CodecForPath(path)
	if err != nil {
		return Config{}, err
	}

	return decode(data, codec)
}

func decode(data []byte, codec Codec) (Config, error) {
	if err := validateDocument(data, codec); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := codec.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s config: %w", codec.Name(), err)
	}

	if len(cfg.Trees) == 0 {
		return Config{}, ErrNoTrees
	}

	trees, err := cfg.ToTrees()
	if err != nil {
		return Config{}, err
	}
	for _, tree := range trees {
		if err := tree.Validate(); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// ToTrees converts the document into the domain model, verifying remote
// kinds against their URLs.
func (c Config) ToTrees() ([]domain.Tree, error) {
	trees := make([]domain.Tree, 0, len(c.Trees))
	for _, treeCfg := range c.Trees {
		tree := domain.Tree{Root: treeCfg.Root}
		for _, repoCfg := range treeCfg.Repos {
			repo := domain.Repo{
				Name:          repoCfg.Name,
				WorktreeSetup: repoCfg.WorktreeSetup,
			}
			for _, remoteCfg := range repoCfg.Remotes {
				kind, err := remoteKind(remoteCfg)
				if err != nil {
					return nil, fmt.Errorf("repo %q: %w", repoCfg.Name, err)
				}
				repo.Remotes = append(repo.Remotes, domain.Remote{
					Name: remoteCfg.Name,
					URL:  remoteCfg.URL,
					Kind: kind,
				})
			}
			tree.Repos = append(tree.Repos, repo)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

func remoteKind(remote RemoteConfig) (domain.RemoteKind, error) {
	detected, err := domain.DetectRemoteKind(remote.URL)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(remote.Type) == "" {
		return detected, nil
	}

	declared, err := domain.ParseRemoteKind(remote.Type)
	if err != nil {
		return "", err
	}
	if declared != detected {
		return "", fmt.Errorf("remote %q: declared type %q does not match url %q", remote.Name, declared, remote.URL)
	}
	return declared, nil
}

// FromTrees builds a document from the domain model, used by the find
// commands to emit current state as declared state.
func FromTrees(trees []domain.Tree) Config {
	cfg := Config{}
	for _, tree := range trees {
		treeCfg := TreeConfig{Root: tree.Root}
		for _, repo := range tree.Repos {
			repoCfg := RepoConfig{
				Name:          repo.FullName(),
				WorktreeSetup: repo.WorktreeSetup,
			}
			for _, remote := range repo.Remotes {
				repoCfg.Remotes = append(repoCfg.Remotes, RemoteConfig{
					Name: remote.Name,
					URL:  remote.URL,
					Type: string(remote.Kind),
				})
			}
			treeCfg.Repos = append(treeCfg.Repos, repoCfg)
		}
		cfg.Trees = append(cfg.Trees, treeCfg)
	}
	return cfg
}

// Normalize sorts trees and repositories for stable emission.
func (c *Config) Normalize() {
	sort.SliceStable(c.Trees, func(i, j int) bool {
		return c.Trees[i].Root < c.Trees[j].Root
	})
	for i := range c.Trees {
		repos := c.Trees[i].Repos
		sort.SliceStable(repos, func(a, b int) bool {
			return repos[a].Name < repos[b].Name
		})
	}
}
