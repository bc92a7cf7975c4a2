package cli

import (
	"fmt"
	"io"
	"log/slog"

	statusapp "github.com/repofleet/repofleet/internal/app/status"
	worktreeapp "github.com/repofleet/repofleet/internal/app/worktree"
	"github.com/repofleet/repofleet/internal/domain"
	"github.com/repofleet/repofleet/internal/infra/gitrepo"
	"github.com/spf13/cobra"
)

func newWorktreeCmd(opts *RootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "worktree",
		Aliases: []string{"wt"},
		Short:   "Manage checkouts of a worktree-managed repository",
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", ".", "Worktree-managed repository to operate on")

	cmd.AddCommand(
		newWorktreeAddCmd(opts, &dir),
		newWorktreeDeleteCmd(opts, &dir),
		newWorktreeCleanCmd(opts, &dir),
		newWorktreeConvertCmd(opts, &dir),
		newWorktreeFetchCmd(opts, &dir),
		newWorktreePullCmd(opts, &dir),
		newWorktreeRebaseCmd(opts, &dir),
		newWorktreeStatusCmd(opts, &dir),
	)
	return cmd
}

func newWorktreeAddCmd(opts *RootOptions, dir *string) *cobra.Command {
	var track string
	var noTrack bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Check out a branch into a new worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWorktreeConfig(*dir)
			if err != nil {
				return err
			}

			service := worktreeapp.NewAddService(gitrepo.NewStore(), slog.Default())
			path, err := service.Add(cmd.Context(), worktreeapp.AddRequest{
				Path:    *dir,
				Name:    args[0],
				NoTrack: noTrack,
				Track:   track,
				Config:  cfg,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, struct {
					Worktree string `json:"worktree"`
					Path     string `json:"path"`
				}{Worktree: args[0], Path: path})
			}
			ui := newRenderer(out, false)
			fmt.Fprintf(out, "%s %s\n", ui.ok("Created"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "Track this remote branch (remote/branch)")
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "Do not track any remote branch")
	cmd.MarkFlagsMutuallyExclusive("track", "no-track")
	return cmd
}

func newWorktreeDeleteCmd(opts *RootOptions, dir *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a worktree and its branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWorktreeConfig(*dir)
			if err != nil {
				return err
			}

			service := worktreeapp.NewDeleteService(gitrepo.NewStore(), slog.Default())
			if err := service.Delete(cmd.Context(), worktreeapp.DeleteRequest{
				Path:   *dir,
				Name:   args[0],
				Force:  force,
				Config: cfg,
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, struct {
					Worktree string `json:"worktree"`
					Deleted  bool   `json:"deleted"`
				}{Worktree: args[0], Deleted: true})
			}
			ui := newRenderer(out, false)
			fmt.Fprintf(out, "%s %s\n", ui.ok("Deleted"), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete even with uncommitted or unmerged work")
	return cmd
}

func newWorktreeCleanCmd(opts *RootOptions, dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete all worktrees whose work is fully merged or pushed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWorktreeConfig(*dir)
			if err != nil {
				return err
			}

			service := worktreeapp.NewCleanService(gitrepo.NewStore(), slog.Default())
			report, err := service.Clean(cmd.Context(), worktreeapp.CleanRequest{Path: *dir, Config: cfg})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, cleanReportPayload(report))
			}
			renderCleanReport(out, newRenderer(out, false), report)
			return nil
		},
	}
	return cmd
}

type cleanReportDoc struct {
	Deleted   []string     `json:"deleted"`
	Skipped   []skippedDoc `json:"skipped,omitempty"`
	Unmanaged []string     `json:"unmanaged,omitempty"`
}

type skippedDoc struct {
	Worktree string `json:"worktree"`
	Reason   string `json:"reason"`
}

func cleanReportPayload(report worktreeapp.CleanReport) cleanReportDoc {
	doc := cleanReportDoc{Deleted: report.Deleted, Unmanaged: report.Unmanaged}
	for _, skipped := range report.Skipped {
		doc.Skipped = append(doc.Skipped, skippedDoc{Worktree: skipped.Name, Reason: skipped.Reason})
	}
	return doc
}

func renderCleanReport(out io.Writer, ui renderer, report worktreeapp.CleanReport) {
	for _, name := range report.Deleted {
		fmt.Fprintf(out, "%s %s\n", ui.ok("Deleted"), name)
	}
	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "%s %s (%s)\n", ui.dim("Kept"), skipped.Name, skipped.Reason)
	}
	for _, name := range report.Unmanaged {
		fmt.Fprintf(out, "%s: %s is not a managed worktree\n", ui.warn("Warning"), name)
	}
	if len(report.Deleted) == 0 && len(report.Skipped) == 0 {
		fmt.Fprintln(out, "Nothing to clean")
		return
	}
	fmt.Fprintf(out, "%s deleted, %s kept\n", formatCount(len(report.Deleted), "worktree"), formatCount(len(report.Skipped), "worktree"))
}

func newWorktreeConvertCmd(opts *RootOptions, dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a plain checkout into a worktree-managed repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := worktreeapp.NewConvertService(gitrepo.NewStore(), slog.Default())
			if err := service.Convert(cmd.Context(), *dir); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, struct {
					Converted bool `json:"converted"`
				}{Converted: true})
			}
			ui := newRenderer(out, false)
			fmt.Fprintf(out, "%s repository converted, use %q to check out branches\n", ui.ok("Done"), "repofleet worktree add")
			return nil
		},
	}
	return cmd
}

func newWorktreeFetchCmd(opts *RootOptions, dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch all remotes without touching any worktree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := worktreeapp.NewFetchService(gitrepo.NewStore(), slog.Default())
			stderr := cmd.ErrOrStderr()
			return withSpinner(cmd.Context(), stderr, colorEnabled(stderr, opts.JSONOutput), "fetching remotes", func() error {
				return service.Fetch(cmd.Context(), *dir)
			})
		},
	}
	return cmd
}

func newWorktreePullCmd(opts *RootOptions, dir *string) *cobra.Command {
	var rebase bool
	var stash bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch all remotes and update every worktree from its upstream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWorktreeConfig(*dir)
			if err != nil {
				return err
			}

			service := worktreeapp.NewPullService(gitrepo.NewStore(), slog.Default())
			var updates []worktreeapp.BranchUpdate
			stderr := cmd.ErrOrStderr()
			err = withSpinner(cmd.Context(), stderr, colorEnabled(stderr, opts.JSONOutput), "pulling worktrees", func() error {
				var runErr error
				updates, runErr = service.Pull(cmd.Context(), worktreeapp.PullRequest{Path: *dir, Rebase: rebase, Stash: stash, Config: cfg})
				return runErr
			})
			if err != nil {
				return err
			}
			return reportBranchUpdates(cmd.OutOrStdout(), opts, updates)
		},
	}
	cmd.Flags().BoolVar(&rebase, "rebase", false, "Rebase instead of fast-forwarding")
	cmd.Flags().BoolVar(&stash, "stash", false, "Stash local changes around the update instead of refusing dirty worktrees")
	return cmd
}

func newWorktreeRebaseCmd(opts *RootOptions, dir *string) *cobra.Command {
	var pull bool
	var rebaseOnPull bool
	var stash bool
	cmd := &cobra.Command{
		Use:   "rebase",
		Short: "Rebase every worktree onto the default branch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWorktreeConfig(*dir)
			if err != nil {
				return err
			}

			service := worktreeapp.NewRebaseService(gitrepo.NewStore(), slog.Default())
			var updates []worktreeapp.BranchUpdate
			stderr := cmd.ErrOrStderr()
			err = withSpinner(cmd.Context(), stderr, colorEnabled(stderr, opts.JSONOutput), "rebasing worktrees", func() error {
				var runErr error
				updates, runErr = service.Rebase(cmd.Context(), worktreeapp.RebaseRequest{Path: *dir, Pull: pull, RebaseOnPull: rebaseOnPull, Stash: stash, Config: cfg})
				return runErr
			})
			if err != nil {
				return err
			}
			return reportBranchUpdates(cmd.OutOrStdout(), opts, updates)
		},
	}
	cmd.Flags().BoolVar(&pull, "pull", false, "Update each branch from its upstream before rebasing")
	cmd.Flags().BoolVar(&rebaseOnPull, "rebase", false, "Rebase onto the upstream during the pull step instead of fast-forwarding")
	cmd.Flags().BoolVar(&stash, "stash", false, "Stash local changes around the update instead of refusing dirty worktrees")
	return cmd
}

func reportBranchUpdates(out io.Writer, opts *RootOptions, updates []worktreeapp.BranchUpdate) error {
	failed := false
	refused := false
	if opts.JSONOutput {
		type updateDoc struct {
			Worktree string `json:"worktree"`
			Branch   string `json:"branch"`
			Updated  bool   `json:"updated"`
			Reason   string `json:"reason,omitempty"`
			Refused  bool   `json:"refused,omitempty"`
			Error    string `json:"error,omitempty"`
		}
		docs := make([]updateDoc, 0, len(updates))
		for _, update := range updates {
			doc := updateDoc{Worktree: update.Name, Branch: update.Branch, Updated: update.Updated, Reason: update.Reason, Refused: update.Refused}
			if update.Err != nil {
				doc.Error = update.Err.Error()
				failed = true
			}
			refused = refused || update.Refused
			docs = append(docs, doc)
		}
		if err := writeJSON(out, docs); err != nil {
			return err
		}
	} else {
		ui := newRenderer(out, false)
		rows := make([]worktreeUpdateRow, 0, len(updates))
		for _, update := range updates {
			row := worktreeUpdateRow{name: update.Name, branch: update.Branch}
			switch {
			case update.Err != nil:
				row.symbol = ui.err("✗")
				row.result = update.Err.Error()
				failed = true
			case update.Updated:
				row.symbol = ui.ok("✓")
				row.result = "updated"
			case update.Refused:
				row.symbol = ui.warn("!")
				row.result = update.Reason
				refused = true
			default:
				row.symbol = ui.dim("-")
				row.result = update.Reason
			}
			rows = append(rows, row)
		}
		renderBranchUpdates(out, ui, rows)
	}

	if failed {
		return ExitError{Code: ExitInternal, Kind: KindInternal, Message: "some worktrees failed to update"}
	}
	if refused {
		return ExitError{Code: ExitRefused, Kind: KindRefused, Message: "some worktrees were not updated"}
	}
	return nil
}

func newWorktreeStatusCmd(opts *RootOptions, dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of every worktree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := statusapp.NewService(gitrepo.NewStore(), slog.Default())
			statuses, err := service.WorktreeStatus(cmd.Context(), *dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, worktreeStatusPayload(statuses))
			}
			renderWorktreeStatuses(out, newRenderer(out, false), statuses)
			return nil
		},
	}
	return cmd
}

type worktreeStatusDoc struct {
	Name     string `json:"name"`
	Missing  bool   `json:"missing,omitempty"`
	Changes  string `json:"changes,omitempty"`
	Upstream string `json:"upstream,omitempty"`
	Tracking string `json:"tracking,omitempty"`
	Health   string `json:"health"`
}

func worktreeStatusPayload(statuses []domain.WorktreeStatus) []worktreeStatusDoc {
	docs := make([]worktreeStatusDoc, 0, len(statuses))
	for _, status := range statuses {
		doc := worktreeStatusDoc{
			Name:     status.Name,
			Missing:  status.Missing,
			Upstream: status.Upstream,
			Health:   string(status.Health()),
		}
		if !status.Changes.Clean() {
			doc.Changes = status.Changes.String()
		}
		if status.Tracking != nil && !status.Tracking.UpToDate() {
			doc.Tracking = status.Tracking.String()
		}
		docs = append(docs, doc)
	}
	return docs
}
