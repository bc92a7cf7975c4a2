package main

import (
	"os"

	"github.com/repofleet/repofleet/pkg/repofleet"
)

func main() {
	os.Exit(repofleet.Execute())
}
