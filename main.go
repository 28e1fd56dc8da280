package main

import (
	"os"

	"github.com/relay-events/relay-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
