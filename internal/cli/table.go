package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/repofleet/repofleet/internal/app/reconcile"
	"github.com/repofleet/repofleet/internal/domain"
)

func newTable(out io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func (r renderer) health(health domain.Health) string {
	switch health {
	case domain.HealthOK:
		return r.ok("✓")
	case domain.HealthAttention:
		return r.warn("!")
	default:
		return r.err("✗")
	}
}

func (r renderer) outcome(outcome reconcile.Outcome) string {
	switch outcome {
	case reconcile.OutcomeUnchanged:
		return r.dim(string(outcome))
	case reconcile.OutcomeChanged:
		return r.ok(string(outcome))
	default:
		return r.err(string(outcome))
	}
}

func renderReconcileReport(out io.Writer, ui renderer, report reconcile.Report) {
	table := newTable(out, []string{"", "Repo", "Actions"})
	for _, result := range report.Results {
		detail := strings.Join(result.Actions, "; ")
		if result.Err != nil {
			detail = result.Err.Error()
		}
		table.Append([]string{ui.outcome(result.Outcome), result.Repo, detail})
	}
	table.Render()

	for _, path := range report.Unmanaged {
		fmt.Fprintf(out, "%s: found unmanaged repository %s\n", ui.warn("Warning"), path)
	}
}

func renderRepoStatuses(out io.Writer, ui renderer, statuses []domain.RepoStatus) {
	table := newTable(out, []string{"", "Repo", "Head", "Changes", "Remotes", "Branches"})
	for _, status := range statuses {
		if status.Missing {
			table.Append([]string{ui.health(status.Health()), status.Path, ui.dim("missing"), "", "", ""})
			continue
		}

		head := status.Head
		if status.WorktreeSetup {
			head = fmt.Sprintf("%d worktrees", status.WorktreeCount)
		} else if status.Empty {
			head = ui.dim("empty")
		}

		changes := ""
		if status.Changes != nil && !status.Changes.Clean() {
			changes = status.Changes.String()
		}

		remotes := make([]string, 0, len(status.Remotes))
		for _, remote := range status.Remotes {
			remotes = append(remotes, remote.Name)
		}

		branches := make([]string, 0, len(status.Branches))
		for _, branch := range status.Branches {
			label := branch.Name
			if branch.Tracking != nil && !branch.Tracking.UpToDate() {
				label += " " + branch.Tracking.String()
			}
			branches = append(branches, label)
		}

		table.Append([]string{
			ui.health(status.Health()),
			status.Path,
			head,
			changes,
			strings.Join(remotes, ", "),
			strings.Join(branches, ", "),
		})
	}
	table.Render()
}

func renderWorktreeStatuses(out io.Writer, ui renderer, statuses []domain.WorktreeStatus) {
	table := newTable(out, []string{"", "Worktree", "Changes", "Upstream", "Tracking"})
	for _, status := range statuses {
		if status.Missing {
			table.Append([]string{ui.health(status.Health()), status.Name, ui.dim("missing"), "", ""})
			continue
		}

		changes := ""
		if !status.Changes.Clean() {
			changes = status.Changes.String()
		}
		tracking := ""
		if status.Tracking != nil && !status.Tracking.UpToDate() {
			tracking = status.Tracking.String()
		}
		table.Append([]string{ui.health(status.Health()), status.Name, changes, status.Upstream, tracking})
	}
	table.Render()
}

func renderBranchUpdates(out io.Writer, ui renderer, updates []worktreeUpdateRow) {
	table := newTable(out, []string{"", "Worktree", "Branch", "Result"})
	for _, row := range updates {
		table.Append([]string{row.symbol, row.name, row.branch, row.result})
	}
	table.Render()
}

type worktreeUpdateRow struct {
	symbol string
	name   string
	branch string
	result string
}

func formatCount(n int, noun string) string {
	label := strconv.Itoa(n) + " " + noun
	if n != 1 {
		label += "s"
	}
	return label
}
