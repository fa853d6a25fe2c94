// Package main is the entry point for the voxauth CLI.
//
// Usage:
//
//	voxauth [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the HTTP API server
//	register   - Enroll a speaker from sample recordings
//	identify   - Identify the speaker in a recording
//	verify     - Verify a recording against a claimed identity
//	users      - List or delete enrolled speakers
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/voxauth/voxauth/cmd/voxauth/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
