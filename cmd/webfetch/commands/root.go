// Package commands defines all Cobra CLI commands for the webfetch binary.
package commands

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webfetch",
		Short: "webfetch fetches, extracts, chunks, and compacts web content",
		Long: `webfetch is a command-line client for the web content retrieval and
normalization pipeline: bounded, SSRF-safe HTTP fetches, HTML/PDF/JSON/XML
extraction into a structured packet, token-budgeted chunking, and
structural or salience-based compaction.

Configuration is read from the environment (MAX_BYTES, TIMEOUT_MS,
RATE_LIMIT_PER_HOST, BLOCK_PRIVATE_IP, ALLOWLIST_DOMAINS, RESPECT_ROBOTS,
USER_AGENT, and friends); see 'webfetch <command> --help' for per-command
flags that override individual requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewFetchCmd(),
		NewExtractCmd(),
		NewChunkCmd(),
		NewCompactCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
