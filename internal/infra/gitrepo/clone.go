package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gogithttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// httpAuth builds basic-auth credentials for https remotes from the
// environment. SSH remotes rely on the ambient agent and key setup.
func httpAuth() *gogithttp.BasicAuth {
	token := os.Getenv("REPOFLEET_GIT_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return nil
	}
	username := os.Getenv("REPOFLEET_GIT_USERNAME")
	if username == "" {
		username = "git"
	}
	return &gogithttp.BasicAuth{Username: username, Password: token}
}

func cloneAuth(url string) *gogithttp.BasicAuth {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return httpAuth()
	}
	return nil
}

// Clone clones url into path under remoteName. Worktree-managed repositories
// are cloned bare into the container directory. After the clone every remote
// branch gets a local branch tracking it, so checkouts and worktrees can
// start from any of them without a prior fetch.
func (s *Store) Clone(ctx context.Context, path, url, remoteName string, worktreeSetup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.GitDir(path, worktreeSetup)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}

	repo, err := git.PlainCloneContext(ctx, target, worktreeSetup, &git.CloneOptions{
		URL:  url,
		Auth: cloneAuth(url),
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}

	if remoteName != git.DefaultRemoteName {
		if err := s.renameRemote(repo, git.DefaultRemoteName, remoteName); err != nil {
			return err
		}
	}

	if err := s.initTrackingBranches(ctx, repo, remoteName, worktreeSetup); err != nil {
		return err
	}

	if worktreeSetup {
		if err := s.setPushDefaultUpstream(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

// renameRemote re-creates the remote under a new name and rewrites the
// remote-tracking refs so they live under the new name as well.
func (s *Store) renameRemote(repo *git.Repository, from, to string) error {
	remote, err := repo.Remote(from)
	if err != nil {
		return fmt.Errorf("lookup remote %s: %w", from, err)
	}
	cfg := remote.Config()

	fetch := make([]config.RefSpec, 0, len(cfg.Fetch))
	for _, spec := range cfg.Fetch {
		fetch = append(fetch, config.RefSpec(strings.ReplaceAll(string(spec), "/"+from+"/", "/"+to+"/")))
	}
	if err := repo.DeleteRemote(from); err != nil {
		return fmt.Errorf("delete remote %s: %w", from, err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: to, URLs: cfg.URLs, Fetch: fetch}); err != nil {
		return fmt.Errorf("create remote %s: %w", to, err)
	}

	iter, err := repo.References()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	prefix := "refs/remotes/" + from + "/"
	var renames [][2]plumbing.ReferenceName
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		name := string(ref.Name())
		if strings.HasPrefix(name, prefix) {
			renamed := plumbing.ReferenceName("refs/remotes/" + to + "/" + strings.TrimPrefix(name, prefix))
			renames = append(renames, [2]plumbing.ReferenceName{ref.Name(), renamed})
		}
		return nil
	})
	for _, pair := range renames {
		old, err := repo.Reference(pair[0], true)
		if err != nil {
			continue
		}
		if err := repo.Storer.SetReference(plumbing.NewHashReference(pair[1], old.Hash())); err != nil {
			return fmt.Errorf("rename remote ref: %w", err)
		}
		if err := repo.Storer.RemoveReference(pair[0]); err != nil {
			return fmt.Errorf("remove remote ref: %w", err)
		}
	}
	return nil
}

// initTrackingBranches creates a local branch for every remote branch that
// does not have one yet, each configured to track its remote counterpart.
func (s *Store) initTrackingBranches(ctx context.Context, repo *git.Repository, remoteName string, bare bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	iter, err := repo.References()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	prefix := "refs/remotes/" + remoteName + "/"
	var remoteBranches []*plumbing.Reference
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		name := string(ref.Name())
		if strings.HasPrefix(name, prefix) && !strings.HasSuffix(name, "/HEAD") {
			remoteBranches = append(remoteBranches, ref)
		}
		return nil
	})

	for _, ref := range remoteBranches {
		branch := strings.TrimPrefix(string(ref.Name()), prefix)
		local := plumbing.NewBranchReferenceName(branch)
		if _, err := repo.Reference(local, false); err == nil {
			continue
		} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("lookup branch %s: %w", branch, err)
		}
		if err := repo.Storer.SetReference(plumbing.NewHashReference(local, ref.Hash())); err != nil {
			return fmt.Errorf("create branch %s: %w", branch, err)
		}
		if err := repo.CreateBranch(&config.Branch{Name: branch, Remote: remoteName, Merge: local}); err != nil && !errors.Is(err, git.ErrBranchExists) {
			return fmt.Errorf("track branch %s: %w", branch, err)
		}
	}
	return nil
}

// FetchAll fetches every configured remote, pruning deleted refs.
func (s *Store) FetchAll(ctx context.Context, path string, worktreeSetup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := runGit(ctx, s.GitDir(path, worktreeSetup), "fetch", "--all", "--prune")
	return err
}
