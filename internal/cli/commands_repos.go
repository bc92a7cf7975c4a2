package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	findapp "github.com/repofleet/repofleet/internal/app/find"
	"github.com/repofleet/repofleet/internal/app/paths"
	reconcileapp "github.com/repofleet/repofleet/internal/app/reconcile"
	statusapp "github.com/repofleet/repofleet/internal/app/status"
	worktreeapp "github.com/repofleet/repofleet/internal/app/worktree"
	"github.com/repofleet/repofleet/internal/config"
	"github.com/repofleet/repofleet/internal/domain"
	"github.com/repofleet/repofleet/internal/infra/forge"
	"github.com/repofleet/repofleet/internal/infra/gitrepo"
	"github.com/spf13/cobra"
)

func newReposCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Manage the declared repository fleet",
	}
	cmd.AddCommand(
		newReposSyncCmd(opts),
		newReposStatusCmd(opts),
		newReposFindCmd(opts),
	)
	return cmd
}

func loadTrees(opts *RootOptions) ([]domain.Tree, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return cfg.ToTrees()
}

func newReposSyncCmd(opts *RootOptions) *cobra.Command {
	var initWorktree bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Drive the repositories on disk toward the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trees, err := loadTrees(opts)
			if err != nil {
				return err
			}
			return runSync(cmd, opts, trees, initWorktree)
		},
	}
	cmd.Flags().BoolVar(&initWorktree, "init-worktree", false, "Check out the default branch after cloning worktree-managed repositories")
	cmd.AddCommand(newReposSyncRemoteCmd(opts))
	return cmd
}

// runSync reconciles the given trees and renders the report. Shared between
// config-driven and forge-driven sync.
func runSync(cmd *cobra.Command, opts *RootOptions, trees []domain.Tree, initWorktree bool) error {
	store := gitrepo.NewStore()
	service := reconcileapp.NewService(store, slog.Default())

	var report reconcileapp.Report
	stderr := cmd.ErrOrStderr()
	err := withSpinner(cmd.Context(), stderr, colorEnabled(stderr, opts.JSONOutput), "syncing repositories", func() error {
		var runErr error
		report, runErr = service.Reconcile(cmd.Context(), trees)
		return runErr
	})
	if err != nil {
		return err
	}

	if initWorktree {
		if err := bootstrapWorktrees(cmd.Context(), store, trees); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.JSONOutput {
		if err := writeJSON(out, reconcilePayload(report)); err != nil {
			return err
		}
	} else {
		renderReconcileReport(out, newRenderer(out, false), report)
	}

	if report.Failed() {
		return ExitError{Code: ExitInternal, Kind: KindInternal, Message: "some repositories failed to sync"}
	}
	return nil
}

func newReposSyncRemoteCmd(opts *RootOptions) *cobra.Command {
	var flags forgeFlags
	var initWorktree bool
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Clone every matching repository from a hosting provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := flags.findTree(cmd)
			if err != nil {
				return err
			}
			return runSync(cmd, opts, []domain.Tree{tree}, initWorktree)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&initWorktree, "init-worktree", false, "Check out the default branch after cloning worktree-managed repositories")
	return cmd
}

// bootstrapWorktrees gives every freshly cloned container a first checkout of
// its default branch, so the directory is usable right after sync.
func bootstrapWorktrees(ctx context.Context, store *gitrepo.Store, trees []domain.Tree) error {
	addService := worktreeapp.NewAddService(store, slog.Default())
	for _, tree := range trees {
		root, err := paths.ExpandPath(tree.Root)
		if err != nil {
			return err
		}
		for _, repo := range tree.Repos {
			if !repo.WorktreeSetup {
				continue
			}
			path := filepath.Join(root, repo.FullName())
			if !store.IsContainer(path) {
				continue
			}

			checkouts, err := store.ListWorktrees(ctx, path)
			if err != nil {
				return err
			}
			active := 0
			for _, checkout := range checkouts {
				if !checkout.Bare {
					active++
				}
			}
			if active > 0 {
				continue
			}

			cfg, err := loadWorktreeConfig(path)
			if err != nil {
				return err
			}
			branch, err := store.DefaultBranch(ctx, path, true, cfg.PersistentBranches)
			if err != nil {
				return err
			}
			if _, err := addService.Add(ctx, worktreeapp.AddRequest{Path: path, Name: branch, Config: cfg}); err != nil {
				return err
			}
		}
	}
	return nil
}

func newReposStatusCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the local state of every declared repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trees, err := loadTrees(opts)
			if err != nil {
				return err
			}

			service := statusapp.NewService(gitrepo.NewStore(), slog.Default())
			statuses, err := service.TreeStatus(cmd.Context(), trees)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, repoStatusPayload(statuses))
			}
			renderRepoStatuses(out, newRenderer(out, false), statuses)
			return nil
		},
	}
	return cmd
}

func newReposFindCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Generate configuration from existing repositories",
	}
	cmd.AddCommand(newReposFindLocalCmd(opts), newReposFindRemoteCmd(opts))
	return cmd
}

func newReposFindLocalCmd(opts *RootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "local <root>",
		Short: "Generate configuration from repositories below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := findapp.NewLocalService(gitrepo.NewStore(), slog.Default())
			tree, err := service.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emitConfig(cmd.OutOrStdout(), []domain.Tree{tree}, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format (toml, yaml, json)")
	return cmd
}

// forgeFlags is the flag set shared by the commands that query a hosting
// provider: find remote and sync remote.
type forgeFlags struct {
	provider     string
	root         string
	token        string
	tokenCommand string
	apiURL       string
	remoteName   string
	users        []string
	groups       []string
	owner        bool
	access       bool
	useHTTPS     bool
	useWorktree  bool
}

func (f *forgeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Hosting provider (github, gitlab)")
	cmd.Flags().StringVar(&f.root, "root", "", "Tree root to declare for the found repositories")
	cmd.Flags().StringVar(&f.token, "token", envDefault("REPOFLEET_API_TOKEN", ""), "API token for the provider")
	cmd.Flags().StringVar(&f.tokenCommand, "token-command", "", "Command whose output is the API token")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Base URL for self-hosted instances")
	cmd.Flags().StringVar(&f.remoteName, "remote-name", "origin", "Name to declare for the single remote")
	cmd.Flags().StringSliceVar(&f.users, "user", nil, "Include repositories of this user (repeatable)")
	cmd.Flags().StringSliceVar(&f.groups, "group", nil, "Include repositories of this group or organization (repeatable)")
	cmd.Flags().BoolVar(&f.owner, "owner", false, "Include repositories owned by the token's user")
	cmd.Flags().BoolVar(&f.access, "access", false, "Include every repository the token can access")
	cmd.Flags().BoolVar(&f.useHTTPS, "https", false, "Declare https remotes instead of ssh")
	cmd.Flags().BoolVar(&f.useWorktree, "worktree", envBoolDefault("REPOFLEET_WORKTREE_DEFAULT", false), "Declare repositories as worktree-managed")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("root")
}

func (f *forgeFlags) findTree(cmd *cobra.Command) (domain.Tree, error) {
	resolvedToken := f.token
	if resolvedToken == "" && f.tokenCommand != "" {
		var err error
		resolvedToken, err = forge.TokenFromCommand(cmd.Context(), f.tokenCommand)
		if err != nil {
			return domain.Tree{}, err
		}
	}

	host, err := forge.NewProvider(f.provider, resolvedToken, f.apiURL)
	if err != nil {
		return domain.Tree{}, err
	}

	kind := domain.RemoteKindSSH
	if f.useHTTPS {
		kind = domain.RemoteKindHTTPS
	}

	service := findapp.NewRemoteService(host, slog.Default())
	return service.Find(cmd.Context(), findapp.RemoteRequest{
		Root:          f.root,
		Filter:        domain.ForgeFilter{Users: f.users, Groups: f.groups, Owner: f.owner, Access: f.access},
		Kind:          kind,
		RemoteName:    f.remoteName,
		WorktreeSetup: f.useWorktree,
	})
}

func newReposFindRemoteCmd(opts *RootOptions) *cobra.Command {
	var flags forgeFlags
	var format string
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Generate configuration from a hosting provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := flags.findTree(cmd)
			if err != nil {
				return err
			}
			return emitConfig(cmd.OutOrStdout(), []domain.Tree{tree}, format)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "toml", "Output format (toml, yaml, json)")
	return cmd
}

func emitConfig(out io.Writer, trees []domain.Tree, format string) error {
	codec, err := config.CodecForFormat(format)
	if err != nil {
		return err
	}
	cfg := config.FromTrees(trees)
	cfg.Normalize()
	data, err := codec.Encode(cfg)
	if err != nil {
		return fmt.Errorf("encode %s config: %w", codec.Name(), err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(out)
	}
	return nil
}

func loadWorktreeConfig(dir string) (domain.WorktreeRootConfig, error) {
	cfg, err := config.LoadWorktreeRootConfig(dir)
	if err != nil {
		return domain.WorktreeRootConfig{}, err
	}
	if cfg == nil {
		return domain.WorktreeRootConfig{}, nil
	}
	return *cfg, nil
}

func writeJSON(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

type repoResultDoc struct {
	Repo    string   `json:"repo"`
	Path    string   `json:"path"`
	Outcome string   `json:"outcome"`
	Actions []string `json:"actions,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type reconcileDoc struct {
	Results   []repoResultDoc `json:"results"`
	Unmanaged []string        `json:"unmanaged,omitempty"`
}

func reconcilePayload(report reconcileapp.Report) reconcileDoc {
	doc := reconcileDoc{Unmanaged: report.Unmanaged}
	for _, result := range report.Results {
		entry := repoResultDoc{
			Repo:    result.Repo,
			Path:    result.Path,
			Outcome: string(result.Outcome),
			Actions: result.Actions,
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		doc.Results = append(doc.Results, entry)
	}
	return doc
}

type repoStatusDoc struct {
	Path          string   `json:"path"`
	WorktreeSetup bool     `json:"worktree_setup"`
	Missing       bool     `json:"missing,omitempty"`
	Empty         bool     `json:"empty,omitempty"`
	Head          string   `json:"head,omitempty"`
	Changes       string   `json:"changes,omitempty"`
	Remotes       []string `json:"remotes,omitempty"`
	WorktreeCount int      `json:"worktree_count,omitempty"`
	Health        string   `json:"health"`
}

func repoStatusPayload(statuses []domain.RepoStatus) []repoStatusDoc {
	docs := make([]repoStatusDoc, 0, len(statuses))
	for _, status := range statuses {
		doc := repoStatusDoc{
			Path:          status.Path,
			WorktreeSetup: status.WorktreeSetup,
			Missing:       status.Missing,
			Empty:         status.Empty,
			Head:          status.Head,
			WorktreeCount: status.WorktreeCount,
			Health:        string(status.Health()),
		}
		if status.Changes != nil && !status.Changes.Clean() {
			doc.Changes = status.Changes.String()
		}
		for _, remote := range status.Remotes {
			doc.Remotes = append(doc.Remotes, remote.Name)
		}
		docs = append(docs, doc)
	}
	return docs
}
