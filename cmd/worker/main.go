package main

import (
	"os"
	_ "time/tzdata"

	"github.com/venuehub/reservations/internal/cli"
)

// The worker binary is the worker subcommand of the main CLI.
func main() {
	root := cli.NewRoot()
	root.SetArgs(append([]string{"worker"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
