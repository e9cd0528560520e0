package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rmkgen/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the rmkgen version",
		Long: `Print the rmkgen version with its commit, build date and Go version.

--short prints the bare version for scripts; --json prints every field.`,
		Example: `  rmkgen version --short`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case shortOutput:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			case jsonOutput:
				return writeJSON(cmd.OutOrStdout(), version.GetInfo())
			default:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print build information as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Print only the version")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}
