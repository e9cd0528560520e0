package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rmkgen/internal/keycode"
	"github.com/Aman-CERP/rmkgen/internal/output"
)

func newKeycodesCmd() *cobra.Command {
	var (
		filter     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "keycodes",
		Short: "List the keycodes vial.json may use",
		Long: `List every plain keycode token and the RMK key it resolves to.

Modifier wrappers (LSFT(...), C_S(...)), layer actions (MO(n), LT(n, kc))
and macros (M0...) are resolved on top of this table.`,
		Example: `  rmkgen keycodes --filter KC_F`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := keycode.Table(filter)

			if jsonOutput {
				m := make(map[string]string, len(entries))
				for _, e := range entries {
					m[e.Token] = e.Keycode.String()
				}
				return writeJSON(cmd.OutOrStdout(), m)
			}

			out := output.New(cmd.OutOrStdout())
			if len(entries) == 0 {
				out.Warningf("No keycodes start with %q", filter)
				return nil
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Token, e.Keycode.String()}
			}
			out.Table([]string{"TOKEN", "RMK"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only tokens starting with this prefix")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
