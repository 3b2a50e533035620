// Package main is the gapview command.
package main

import (
	"os"

	"github.com/leapstack-labs/gapview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
