// Package main is the entry point for opsboard.
package main

import (
	"os"

	"github.com/opsboard/opsboard/cmd/opsboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
