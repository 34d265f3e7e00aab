// Package main provides the leaperd command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/leaperd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
