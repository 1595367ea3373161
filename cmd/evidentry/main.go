// Package main provides the entry point for the evidentry CLI tool.
package main

import (
	"github.com/evidentry/evidentry/cmd/evidentry/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
