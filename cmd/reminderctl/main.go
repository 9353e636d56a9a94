package main

import (
	"os"

	"github.com/carebuddy/reminder-engine/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
