package main

import (
	"context"
	"fmt"
	"os"

	"github.com/repofleet/repofleet/pkg/repofleetsdk"
)

func main() {
	configPath := os.Getenv("REPOFLEET_CONFIG")
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "REPOFLEET_CONFIG is required (path to the declared-state document)")
		os.Exit(1)
	}

	client, err := repofleetsdk.New(repofleetsdk.DefaultConfig(configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	report, err := client.Sync(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
		os.Exit(1)
	}
	for _, repo := range report.Repos {
		if repo.Err != nil {
			fmt.Printf("sync repo=%s outcome=%s err=%v\n", repo.Name, repo.Outcome, repo.Err)
			continue
		}
		fmt.Printf("sync repo=%s outcome=%s actions=%d\n", repo.Name, repo.Outcome, len(repo.Actions))
	}
	for _, path := range report.Unmanaged {
		fmt.Printf("unmanaged path=%s\n", path)
	}

	statuses, err := client.Status(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		os.Exit(1)
	}
	for _, status := range statuses {
		fmt.Printf("status path=%s health=%s head=%s\n", status.Path, status.Health, status.Head)
	}

	if report.Failed() {
		os.Exit(1)
	}
}
