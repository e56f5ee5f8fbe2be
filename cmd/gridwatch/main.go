// Package main is the entry point for the gridwatch CLI application.
package main

import (
	"gridwatch/cmd/gridwatch/cmd"
)

// Version information - will be set by build flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date
	cmd.Execute()
}
