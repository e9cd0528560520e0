package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rmkgen/internal/config"
	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/materialize"
	"github.com/Aman-CERP/rmkgen/internal/output"
	"github.com/Aman-CERP/rmkgen/internal/pipeline"
	"github.com/Aman-CERP/rmkgen/internal/reconcile"
	"github.com/Aman-CERP/rmkgen/internal/template"
	"github.com/Aman-CERP/rmkgen/internal/ui"
	"github.com/Aman-CERP/rmkgen/internal/watcher"
)

// inputFlags are shared by generate and check.
type inputFlags struct {
	keyboard    string
	keymap      string
	splitPolicy string
	workers     int
	jsonOutput  bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.keyboard, "keyboard", "k", pipeline.DefaultKeyboardFile, "Hardware description (keyboard.toml)")
	cmd.Flags().StringVarP(&f.keymap, "vial", "v", pipeline.DefaultKeymapFile, "Vial keymap (vial.json)")
	cmd.Flags().StringVar(&f.splitPolicy, "split-policy", "", "Split half assignment: offsets, rows, columns")
	cmd.Flags().IntVar(&f.workers, "workers", -1, "Layers resolved concurrently (0 = all CPUs)")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output the result as JSON")
}

// request builds a pipeline request from the configuration and flags.
// Flags override configuration.
func (f *inputFlags) request(cfg *config.Config) (pipeline.Request, error) {
	split := cfg.Reconcile.SplitPolicy
	if f.splitPolicy != "" {
		split = f.splitPolicy
	}
	sp, err := reconcile.ParseSplitPolicy(split)
	if err != nil {
		return pipeline.Request{}, err
	}
	workers := cfg.Resolve.Workers
	if f.workers >= 0 {
		workers = f.workers
	}
	return pipeline.Request{
		KeyboardPath: f.keyboard,
		KeymapPath:   f.keymap,
		SplitPolicy:  sp,
		Workers:      workers,
	}, nil
}

type generateOptions struct {
	inputFlags
	outputDir string
	template  string
	policy    string
	watch     bool
}

func newGenerateCmd(g *globals) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an RMK firmware project",
		Long: `Generate an RMK firmware project from keyboard.toml and vial.json.

The documents are parsed and reconciled, every keycode is resolved and the
Rust sources are rendered. The matching rmk-template variant is then copied
to the output directory together with the generated sources and both input
documents. Nothing is written if any step fails.

The output directory defaults to the keyboard name with spaces replaced by
underscores.`,
		Example: `  # Use ./keyboard.toml and ./vial.json
  rmkgen generate

  # Explicit inputs and output, offline template
  rmkgen generate -k pad.toml -v pad.json -o firmware --template embedded

  # Regenerate on every save, keeping files you added
  rmkgen generate --watch --policy preserve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if opts.watch {
				return runWatch(cmd, g, cfg, opts)
			}
			_, err = runGenerate(cmd.Context(), cmd, g, cfg, opts)
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Project directory (default: keyboard name)")
	cmd.Flags().StringVar(&opts.template, "template", "", "Template source: embedded, a directory, a .zip or a URL")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Existing output directory: refuse, replace, preserve")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Regenerate whenever an input file changes")

	return cmd
}

// effectivePolicy is the configured destination policy overridden by
// --policy.
func (o *generateOptions) effectivePolicy(cfg *config.Config) (materialize.Policy, error) {
	policy := cfg.Output.Policy
	if o.policy != "" {
		policy = o.policy
	}
	return materialize.ParsePolicy(policy)
}

// watchPolicy is the policy for regenerations in watch mode. Refuse
// becomes preserve; other policies are kept.
func watchPolicy(p materialize.Policy) materialize.Policy {
	if p == materialize.PolicyRefuse {
		return materialize.PolicyPreserve
	}
	return p
}

// generateJSON is the --json result of a successful generate.
type generateJSON struct {
	Keyboard   string   `json:"keyboard"`
	Variant    string   `json:"variant"`
	Dest       string   `json:"dest"`
	Files      []string `json:"files"`
	Generated  []string `json:"generated"`
	Preserved  []string `json:"preserved,omitempty"`
	Replaced   bool     `json:"replaced"`
	DurationMS int64    `json:"duration_ms"`
}

func runGenerate(ctx context.Context, cmd *cobra.Command, g *globals, cfg *config.Config, opts *generateOptions) (*pipeline.Result, error) {
	req, err := opts.request(cfg)
	if err != nil {
		return nil, report(cmd, g, opts.jsonOutput, err)
	}
	if req.Policy, err = opts.effectivePolicy(cfg); err != nil {
		return nil, report(cmd, g, opts.jsonOutput, err)
	}
	req.OutputDir = opts.outputDir

	renderer := newRenderer(cmd, g, opts.jsonOutput, req.KeyboardPath)
	observer := ui.NewObserver(renderer)
	req.Observer = observer

	spec := cfg.Template.Source
	if opts.template != "" {
		spec = opts.template
	}
	tmplOpts := append(cfg.TemplateOptions(), template.WithProgress(observer.Download()))
	if req.Template, err = template.NewSource(spec, tmplOpts...); err != nil {
		return nil, report(cmd, g, opts.jsonOutput, err)
	}

	if err := renderer.Start(ctx); err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, req)
	if err != nil {
		_ = renderer.Stop()
		return nil, report(cmd, g, opts.jsonOutput, err)
	}

	renderer.Complete(ui.CompletionStats{
		Keyboard: res.Hardware.Name,
		Variant:  res.Variant,
		Dest:     res.Dest,
		Layers:   res.Layout.NumLayers,
		Keys:     len(res.Layout.Keys),
		Files:    len(res.Project.Files),
		Duration: res.Duration,
	})
	_ = renderer.Stop()

	if opts.jsonOutput {
		return res, writeJSON(cmd.OutOrStdout(), generateJSON{
			Keyboard:   res.Hardware.Name,
			Variant:    res.Variant,
			Dest:       res.Dest,
			Files:      res.Project.Files,
			Generated:  res.Project.Generated,
			Preserved:  res.Project.Preserved,
			Replaced:   res.Project.Replaced,
			DurationMS: res.Duration.Milliseconds(),
		})
	}
	return res, nil
}

// runWatch generates once, then regenerates after every change to the input
// documents until interrupted. After the first successful run the policy
// is pinned through watchPolicy so the project can be rewritten in place.
func runWatch(cmd *cobra.Command, g *globals, cfg *config.Config, opts *generateOptions) error {
	ctx := cmd.Context()
	out := output.New(cmd.ErrOrStderr())

	generated := false
	regenerate := func() {
		res, err := runGenerate(ctx, cmd, g, cfg, opts)
		if err != nil {
			return
		}
		if !generated {
			generated = true
			if p, err := opts.effectivePolicy(cfg); err == nil {
				opts.policy = string(watchPolicy(p))
			}
			if opts.outputDir == "" {
				opts.outputDir = res.Dest
			}
		}
	}
	regenerate()

	w, err := watcher.New([]string{opts.keyboard, opts.keymap}, watcher.DefaultOptions())
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("watcher_stopped", slog.String("error", err.Error()))
		}
	}()

	out.Statusf("👀", "Watching %s and %s (ctrl+c to stop)", filepath.Base(opts.keyboard), filepath.Base(opts.keymap))
	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			out.Newline()
			out.Status("👋", "Stopped watching")
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			out.Warningf("watcher: %v", err)
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			for _, e := range batch {
				slog.Debug("input_changed",
					slog.String("path", e.Path),
					slog.String("op", e.Operation.String()))
			}
			out.Status("🔄", "Input changed, regenerating")
			regenerate()
		}
	}
}

// newRenderer picks the progress renderer. JSON and debug runs get no TUI.
func newRenderer(cmd *cobra.Command, g *globals, jsonOutput bool, title string) ui.Renderer {
	if jsonOutput {
		return ui.NewPlainRenderer(ui.NewConfig(io.Discard))
	}
	return ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(g.plain || g.debug),
		ui.WithNoColor(g.noColor),
		ui.WithTitle(title),
	))
}

// report prints the problems in err and marks it reported.
func report(cmd *cobra.Command, g *globals, jsonOutput bool, err error) error {
	if jsonOutput {
		data, jerr := errors.FormatJSON(err)
		if jerr != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return reportedError{err}
	}
	ui.NewReportRenderer(cmd.ErrOrStderr(), g.noColor).RenderProblems(err)
	return reportedError{err}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
