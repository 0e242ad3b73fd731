// Package main is the entry point for the golem CLI.
package main

import (
	"os"

	"github.com/leandroluk/golemfilter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
