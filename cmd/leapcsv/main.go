// Package main provides the leapcsv CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapcsv/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
