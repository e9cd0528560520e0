package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rmkgen/internal/emit"
	"github.com/Aman-CERP/rmkgen/internal/pipeline"
	"github.com/Aman-CERP/rmkgen/internal/ui"
)

// checkJSON is the --json result of a successful check.
type checkJSON struct {
	Keyboard  string   `json:"keyboard"`
	Chip      string   `json:"chip"`
	Variant   string   `json:"variant"`
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	Layers    int      `json:"layers"`
	Keys      int      `json:"keys"`
	Split     bool     `json:"split"`
	Fragments []string `json:"fragments"`
}

func newCheckCmd(g *globals) *cobra.Command {
	flags := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate keyboard.toml and vial.json without writing",
		Long: `Parse, reconcile, resolve and emit without fetching a template or
writing anything. Every problem found is listed with its code, file, layer
and key position.`,
		Example: `  rmkgen check
  rmkgen check -k pad.toml -v pad.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg)
			if err != nil {
				return report(cmd, g, flags.jsonOutput, err)
			}
			req.CheckOnly = true

			res, err := pipeline.Run(cmd.Context(), req)
			if err != nil {
				return report(cmd, g, flags.jsonOutput, err)
			}

			summary := ui.CheckSummary{
				Keyboard:  res.Hardware.Name,
				Chip:      res.Hardware.Chip,
				Variant:   res.Variant,
				Rows:      res.Layout.Rows,
				Cols:      res.Layout.Cols,
				Layers:    res.Layout.NumLayers,
				Keys:      len(res.Layout.Keys),
				Split:     res.Layout.Split(),
				Fragments: emit.Paths(res.Fragments),
			}
			if flags.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), checkJSON(summary))
			}
			ui.NewReportRenderer(cmd.OutOrStdout(), g.noColor).RenderCheck(summary)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
