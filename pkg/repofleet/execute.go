package repofleet

import "github.com/repofleet/repofleet/internal/cli"

// Execute runs the repofleet CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
