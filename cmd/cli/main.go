// Package main is the entry point for the askdata CLI binary.
package main

import (
	"os"

	cli "askdata/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
