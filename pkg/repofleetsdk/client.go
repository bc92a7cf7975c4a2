package repofleetsdk

import (
	"context"
	"fmt"

	findapp "github.com/repofleet/repofleet/internal/app/find"
	reconcileapp "github.com/repofleet/repofleet/internal/app/reconcile"
	statusapp "github.com/repofleet/repofleet/internal/app/status"
	"github.com/repofleet/repofleet/internal/config"
	"github.com/repofleet/repofleet/internal/domain"
	"github.com/repofleet/repofleet/internal/infra/gitrepo"
)

// Client provides direct access to repofleet core services.
type Client struct {
	cfg   Config
	store *gitrepo.Store
}

// New creates a client for the given config. The declared-state document is
// not read until a method needs it.
func New(cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: normalized, store: gitrepo.NewStore()}, nil
}

// Trees loads and validates the declared-state document.
func (c *Client) Trees() ([]Tree, error) {
	trees, err := c.loadTrees()
	if err != nil {
		return nil, err
	}
	out := make([]Tree, 0, len(trees))
	for _, tree := range trees {
		out = append(out, exportTree(tree))
	}
	return out, nil
}

// Sync reconciles every declared repository with the filesystem: missing
// repositories are cloned or initialized and remotes are aligned with the
// declaration. One failing repository does not stop the others; inspect the
// report for per-repository errors.
func (c *Client) Sync(ctx context.Context) (SyncReport, error) {
	trees, err := c.loadTrees()
	if err != nil {
		return SyncReport{}, err
	}

	service := reconcileapp.NewService(c.store, c.cfg.Logger)
	report, err := service.Reconcile(ctx, trees)
	if err != nil {
		return SyncReport{}, err
	}

	out := SyncReport{Unmanaged: report.Unmanaged}
	for _, result := range report.Results {
		out.Repos = append(out.Repos, RepoSync{
			Name:    result.Repo,
			Path:    result.Path,
			Outcome: string(result.Outcome),
			Actions: result.Actions,
			Err:     result.Err,
		})
	}
	return out, nil
}

// Status reports the local state of every declared repository. Repositories
// missing from disk are marked, not treated as errors.
func (c *Client) Status(ctx context.Context) ([]RepoStatus, error) {
	trees, err := c.loadTrees()
	if err != nil {
		return nil, err
	}

	service := statusapp.NewService(c.store, c.cfg.Logger)
	statuses, err := service.TreeStatus(ctx, trees)
	if err != nil {
		return nil, err
	}

	out := make([]RepoStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, exportStatus(status))
	}
	return out, nil
}

// FindLocal walks root and builds a tree from the git repositories it finds.
// The result can be serialized into a declared-state document.
func (c *Client) FindLocal(ctx context.Context, root string) (Tree, error) {
	if root == "" {
		return Tree{}, ErrRootRequired
	}
	service := findapp.NewLocalService(c.store, c.cfg.Logger)
	tree, err := service.Find(ctx, root)
	if err != nil {
		return Tree{}, err
	}
	return exportTree(tree), nil
}

func (c *Client) loadTrees() ([]domain.Tree, error) {
	doc, err := config.Load(c.cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.cfg.ConfigPath, err)
	}
	return doc.ToTrees()
}

func exportTree(tree domain.Tree) Tree {
	out := Tree{Root: tree.Root}
	for _, repo := range tree.Repos {
		exported := Repo{
			Name:          repo.Name,
			Namespace:     repo.Namespace,
			WorktreeSetup: repo.WorktreeSetup,
		}
		for _, remote := range repo.Remotes {
			exported.Remotes = append(exported.Remotes, Remote{
				Name: remote.Name,
				URL:  remote.URL,
				Kind: string(remote.Kind),
			})
		}
		out.Repos = append(out.Repos, exported)
	}
	return out
}

func exportStatus(status domain.RepoStatus) RepoStatus {
	out := RepoStatus{
		Path:          status.Path,
		WorktreeSetup: status.WorktreeSetup,
		Missing:       status.Missing,
		Empty:         status.Empty,
		Head:          status.Head,
		WorktreeCount: status.WorktreeCount,
		Health:        string(status.Health()),
	}
	if status.Changes != nil {
		out.NewFiles = status.Changes.New
		out.ModifiedFiles = status.Changes.Modified
		out.DeletedFiles = status.Changes.Deleted
	}
	for _, remote := range status.Remotes {
		out.Remotes = append(out.Remotes, Remote{
			Name: remote.Name,
			URL:  remote.URL,
			Kind: string(remote.Kind),
		})
	}
	for _, branch := range status.Branches {
		exported := Branch{Name: branch.Name, Upstream: branch.Upstream}
		if branch.Tracking != nil {
			exported.Tracking = &Tracking{Ahead: branch.Tracking.Ahead, Behind: branch.Tracking.Behind}
		}
		out.Branches = append(out.Branches, exported)
	}
	return out
}
