package main

import (
	"os"
	_ "time/tzdata"

	"github.com/venuehub/reservations/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
