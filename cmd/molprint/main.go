// Command molprint is the command line front end of the fingerprint
// transform core.
package main

import (
	"os"

	"github.com/turtacn/molprint/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
