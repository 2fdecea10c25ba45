// Package main implements the symflow CLI. It runs the symbolic null-state
// analysis and the checks built on it over JavaScript sources.
package main

import (
	"os"

	"github.com/l3aro/go-symflow/cmd/symflow/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate("symflow version {{.Version}}\n")

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
