package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd constructs the `webfetch version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the webfetch version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
