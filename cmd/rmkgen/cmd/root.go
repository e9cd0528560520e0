// Package cmd provides the CLI commands for rmkgen.
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rmkgen/internal/config"
	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/logging"
	"github.com/Aman-CERP/rmkgen/pkg/version"
)

// globals holds the persistent flags and the loaded configuration.
type globals struct {
	debug   bool
	noColor bool
	plain   bool

	cfg     *config.Config
	cfgErr  error
	cleanup func()
}

// config returns the effective configuration, or the error loading it.
func (g *globals) config() (*config.Config, error) {
	if g.cfgErr != nil {
		return nil, g.cfgErr
	}
	if g.cfg == nil {
		return config.NewConfig(), nil
	}
	return g.cfg, nil
}

// reportedError marks an error whose problems were already printed.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// NewRootCmd creates the root command for the rmkgen CLI.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "rmkgen",
		Short: "Generate RMK keyboard firmware projects",
		Long: `rmkgen turns a keyboard.toml hardware description and a Vial
vial.json keymap into a ready-to-build RMK firmware project.

It checks that both documents agree, resolves every keycode, renders the
Rust keymap and matrix sources and copies them into the matching
rmk-template variant.`,
		Example: `  # Generate ./My_Keyboard from keyboard.toml and vial.json
  rmkgen generate

  # Validate without writing anything
  rmkgen check -k boards/pad.toml -v boards/pad.json`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("rmkgen version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.rmkgen/logs/")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&g.plain, "plain", false, "Plain progress output (no TUI)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return g.setup(cmd)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		g.teardown()
		return nil
	}

	cmd.AddCommand(newGenerateCmd(g))
	cmd.AddCommand(newCheckCmd(g))
	cmd.AddCommand(newKeycodesCmd())
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and installs the default logger.
func (g *globals) setup(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	g.cfg, g.cfgErr = config.Load(wd)

	level := "warn"
	if g.cfg != nil {
		level = g.cfg.Logging.Level
	}

	if g.debug {
		logCfg := logging.DebugConfig()
		logCfg.Console = cmd.ErrOrStderr()
		logger, cleanup, err := logging.Setup(logCfg)
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		g.cleanup = cleanup
		slog.SetDefault(logger)
		slog.Debug("debug_logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
		return nil
	}

	slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), level))
	return nil
}

func (g *globals) teardown() {
	if g.cleanup != nil {
		g.cleanup()
		g.cleanup = nil
	}
}

// Execute runs the root command. Errors not already reported by a command
// are printed to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var reported reportedError
	if !stderrors.As(err, &reported) {
		fmt.Fprint(root.ErrOrStderr(), errors.FormatForCLI(err))
	}
	return err
}
