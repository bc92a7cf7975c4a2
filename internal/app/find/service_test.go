package find

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/repofleet/repofleet/internal/domain"
)

type fakeVCS struct {
	repos      map[string][]domain.Remote
	containers map[string]bool
}

func (f *fakeVCS) IsRepository(path string) bool {
	_, ok := f.repos[path]
	return ok
}

func (f *fakeVCS) IsContainer(path string) bool { return f.containers[path] }

func (f *fakeVCS) Remotes(ctx context.Context, path string, worktreeSetup bool) ([]domain.Remote, error) {
	return f.repos[path], nil
}

type fakeForge struct {
	projects []domain.ForgeProject
	filter   domain.ForgeFilter
}

func (f *fakeForge) Name() string { return "fake" }

func (f *fakeForge) ListProjects(ctx context.Context, filter domain.ForgeFilter) ([]domain.ForgeProject, error) {
	f.filter = filter
	return f.projects, nil
}

func TestLocalFindBuildsTree(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"app", "acme/lib", "not-a-repo", "app/vendor/nested"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	vcs := &fakeVCS{
		repos: map[string][]domain.Remote{
			filepath.Join(root, "app"):      {{Name: "origin", URL: "git@example.com:app.git", Kind: domain.RemoteKindSSH}},
			filepath.Join(root, "acme/lib"): {{Name: "origin", URL: "https://example.com/lib.git", Kind: domain.RemoteKindHTTPS}},
			// nested inside the app repo, must not be visited
			filepath.Join(root, "app/vendor/nested"): {{Name: "origin", URL: "git@example.com:nested.git", Kind: domain.RemoteKindSSH}},
		},
		containers: map[string]bool{filepath.Join(root, "acme/lib"): true},
	}

	svc := NewLocalService(vcs, nil)
	tree, err := svc.Find(context.Background(), root)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}

	if len(tree.Repos) != 2 {
		t.Fatalf("expected 2 repos, got %+v", tree.Repos)
	}
	lib := tree.Repos[0]
	if lib.FullName() != "acme/lib" || !lib.WorktreeSetup {
		t.Fatalf("unexpected first repo: %+v", lib)
	}
	app := tree.Repos[1]
	if app.FullName() != "app" || app.Namespace != "" {
		t.Fatalf("unexpected second repo: %+v", app)
	}
}

func TestLocalFindSkipsUnsupportedRemotes(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "app"), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	vcs := &fakeVCS{
		repos: map[string][]domain.Remote{
			filepath.Join(root, "app"): {
				{Name: "origin", URL: "git@example.com:app.git", Kind: domain.RemoteKindSSH},
				{Name: "local", URL: "file:///srv/mirror/app.git"},
			},
		},
		containers: map[string]bool{},
	}

	svc := NewLocalService(vcs, nil)
	tree, err := svc.Find(context.Background(), root)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(tree.Repos[0].Remotes) != 1 || tree.Repos[0].Remotes[0].Name != "origin" {
		t.Fatalf("expected only origin remote, got %+v", tree.Repos[0].Remotes)
	}
}

func TestRemoteFindBuildsTree(t *testing.T) {
	forge := &fakeForge{projects: []domain.ForgeProject{
		{Name: "fleet", Namespace: "acme", SSHURL: "git@example.com:acme/fleet.git", HTTPSURL: "https://example.com/acme/fleet.git"},
		{Name: "tools", Namespace: "acme", SSHURL: "git@example.com:acme/tools.git", HTTPSURL: "https://example.com/acme/tools.git"},
	}}

	svc := NewRemoteService(forge, nil)
	tree, err := svc.Find(context.Background(), RemoteRequest{
		Root:          "~/code",
		Filter:        domain.ForgeFilter{Groups: []string{"acme"}},
		WorktreeSetup: true,
	})
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}

	if tree.Root != "~/code" {
		t.Fatalf("unexpected root %q", tree.Root)
	}
	if len(tree.Repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(tree.Repos))
	}
	repo := tree.Repos[0]
	if repo.FullName() != "acme/fleet" || !repo.WorktreeSetup {
		t.Fatalf("unexpected repo: %+v", repo)
	}
	// ssh and origin are the defaults
	if repo.Remotes[0].Name != "origin" || repo.Remotes[0].URL != "git@example.com:acme/fleet.git" {
		t.Fatalf("unexpected remote: %+v", repo.Remotes[0])
	}
	if len(forge.filter.Groups) != 1 {
		t.Fatalf("filter not passed through: %+v", forge.filter)
	}
}

func TestRemoteFindHTTPSKind(t *testing.T) {
	forge := &fakeForge{projects: []domain.ForgeProject{
		{Name: "fleet", Namespace: "acme", SSHURL: "git@example.com:acme/fleet.git", HTTPSURL: "https://example.com/acme/fleet.git"},
	}}

	svc := NewRemoteService(forge, nil)
	tree, err := svc.Find(context.Background(), RemoteRequest{
		Root:       "/code",
		Filter:     domain.ForgeFilter{Owner: true},
		Kind:       domain.RemoteKindHTTPS,
		RemoteName: "upstream",
	})
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	remote := tree.Repos[0].Remotes[0]
	if remote.Name != "upstream" || remote.URL != "https://example.com/acme/fleet.git" {
		t.Fatalf("unexpected remote: %+v", remote)
	}
}
