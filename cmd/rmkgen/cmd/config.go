package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/rmkgen/configs"
	"github.com/Aman-CERP/rmkgen/internal/config"
	"github.com/Aman-CERP/rmkgen/internal/output"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage generator configuration",
		Long: `Manage the rmkgen configuration files.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config ($XDG_CONFIG_HOME/rmkgen/config.yaml)
  3. Project config (.rmkgen.yaml in the working directory)
  4. Environment variables (RMKGEN_*)
  5. Command-line flags`,
		Example: `  # Create .rmkgen.yaml in the working directory
  rmkgen config init

  # Create the user config instead
  rmkgen config init --user

  # Show effective configuration
  rmkgen config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Write the commented configuration template to .rmkgen.yaml in the
working directory, or to the user config with --user.

An existing file is left alone unless --force is given, in which case it is
backed up first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if !user {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				path = filepath.Join(wd, config.ProjectFiles[0])
			}
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&user, "user", false, "Create the user config instead of the project config")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	var backup string
	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to overwrite it (a backup is kept)")
			return nil
		}
		if backup, err = config.Backup(path); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	if backup != "" {
		out.Statusf("💾", "Backup: %s", backup)
	}
	out.Status("💡", "Run 'rmkgen config show' to verify")
	return nil
}

func newConfigShowCmd(g *globals) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after layering every source, or a single
source with --source.`,
		Example: `  rmkgen config show
  rmkgen config show --json
  rmkgen config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, g, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func runConfigShow(cmd *cobra.Command, g *globals, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var (
		cfg        *config.Config
		sourceDesc string
		err        error
	)

	switch source {
	case "merged":
		if cfg, err = g.config(); err != nil {
			return err
		}
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		path := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'rmkgen config init --user' to create one")
			return nil
		}
		if cfg, err = config.LoadFile(path); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("user (%s)", path)

	case "project":
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path := config.ProjectConfigPath(wd)
		if path == "" {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", filepath.Join(wd, config.ProjectFiles[0]))
			out.Status("💡", "Run 'rmkgen config init' to create one")
			return nil
		}
		if cfg, err = config.LoadFile(path); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("project (%s)", path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (built-in)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			project := config.ProjectConfigPath(wd)
			if project == "" {
				project = filepath.Join(wd, config.ProjectFiles[0]) + " (not found)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user:    %s\n", config.GetUserConfigPath())
			fmt.Fprintf(cmd.OutOrStdout(), "project: %s\n", project)
			return nil
		},
	}
}
