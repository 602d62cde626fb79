// sessionstats - Session Log Aggregation Tool
//
// sessionstats reads user and session records from plain-text logs and
// writes a per-user session statistics report.
package main

import (
	"os"

	"github.com/ccollicutt/sessionstats/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
