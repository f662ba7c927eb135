// Command webfetch is the CLI and demo HTTP server for the web content
// retrieval and normalization pipeline (fetch, extract, chunk, compact).
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/web-fetch-core/cmd/webfetch/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
