package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `[[trees]]
root = "~/projects"

[[trees.repos]]
name = "widgets"
worktree_setup = true

[[trees.repos.remotes]]
name = "origin"
url = "https://github.com/acme/widgets.git"
type = "https"

[[trees.repos.remotes]]
name = "mirror"
url = "git@example.com:acme/widgets.git"
type = "ssh"
`

const yamlConfig = `trees:
  - root: ~/projects
    repos:
      - name: widgets
        worktree_setup: true
        remotes:
          - name: origin
            url: https://github.com/acme/widgets.git
            type: https
`

const jsonConfig = `{
  "trees": [
    {
      "root": "~/projects",
      "repos": [
        {
          "name": "widgets",
          "remotes": [
            {"name": "origin", "url": "https://github.com/acme/widgets.git", "type": "https"}
          ]
        }
      ]
    }
  ]
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.toml", tomlConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Trees, 1)
	require.Len(t, cfg.Trees[0].Repos, 1)

	repo := cfg.Trees[0].Repos[0]
	assert.Equal(t, "widgets", repo.Name)
	assert.True(t, repo.WorktreeSetup)
	require.Len(t, repo.Remotes, 2)
	assert.Equal(t, "mirror", repo.Remotes[1].Name)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", yamlConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Trees, 1)
	assert.Equal(t, "~/projects", cfg.Trees[0].Root)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", jsonConfig))
	require.NoError(t, err)

	trees, err := cfg.ToTrees()
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Len(t, trees[0].Repos, 1)
	assert.Equal(t, domain.RemoteKindHTTPS, trees[0].Repos[0].Remotes[0].Kind)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", tomlConfig+"\nunknown = true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "trees:\n  - repos: []\n"))
	require.Error(t, err)
}

func TestLoadRejectsKindMismatch(t *testing.T) {
	mismatch := `trees:
  - root: /srv/git
    repos:
      - name: widgets
        remotes:
          - name: origin
            url: git@example.com:acme/widgets.git
            type: https
`
	_, err := Load(writeConfig(t, "config.yaml", mismatch))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestToTreesDetectsKindWhenOmitted(t *testing.T) {
	cfg := Config{Trees: []TreeConfig{{
		Root: "/srv/git",
		Repos: []RepoConfig{{
			Name:    "widgets",
			Remotes: []RemoteConfig{{Name: "origin", URL: "git@example.com:acme/widgets.git"}},
		}},
	}}}

	trees, err := cfg.ToTrees()
	require.NoError(t, err)
	assert.Equal(t, domain.RemoteKindSSH, trees[0].Repos[0].Remotes[0].Kind)
}

func TestFromTreesRoundTrip(t *testing.T) {
	trees := []domain.Tree{{
		Root: "/srv/git",
		Repos: []domain.Repo{{
			Name:          "widgets",
			Namespace:     "acme",
			WorktreeSetup: true,
			Remotes: []domain.Remote{{
				Name: "origin",
				URL:  "https://github.com/acme/widgets.git",
				Kind: domain.RemoteKindHTTPS,
			}},
		}},
	}}

	cfg := FromTrees(trees)
	require.Len(t, cfg.Trees, 1)
	assert.Equal(t, "acme/widgets", cfg.Trees[0].Repos[0].Name)

	for _, codec := range []Codec{TOMLCodec{}, YAMLCodec{}, JSONCodec{}} {
		data, err := codec.Encode(cfg)
		require.NoError(t, err, codec.Name())

		decoded, err := decode(data, codec)
		require.NoError(t, err, codec.Name())
		assert.Equal(t, cfg, decoded, codec.Name())
	}
}

func TestNormalizeSortsTreesAndRepos(t *testing.T) {
	cfg := Config{Trees: []TreeConfig{
		{Root: "/b", Repos: []RepoConfig{{Name: "z"}, {Name: "a"}}},
		{Root: "/a"},
	}}
	cfg.Normalize()

	assert.Equal(t, "/a", cfg.Trees[0].Root)
	assert.Equal(t, "a", cfg.Trees[1].Repos[0].Name)
}
