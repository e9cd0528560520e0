// Package ui provides terminal progress and report rendering for the CLI.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents a generation stage.
type Stage int

const (
	// StageParse reads keyboard.toml and vial.json.
	StageParse Stage = iota
	// StageReconcile builds the unified layout.
	StageReconcile
	// StageResolve maps Vial tokens to keycodes.
	StageResolve
	// StageEmit renders the Rust fragments.
	StageEmit
	// StageTemplate acquires the project template.
	StageTemplate
	// StageMaterialize writes the project directory.
	StageMaterialize
	// StageComplete indicates the run finished.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageParse:
		return "Parsing"
	case StageReconcile:
		return "Reconciling"
	case StageResolve:
		return "Resolving"
	case StageEmit:
		return "Emitting"
	case StageTemplate:
		return "Fetching template"
	case StageMaterialize:
		return "Writing project"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Short returns the stage label used by the TUI stage bar.
func (s Stage) Short() string {
	switch s {
	case StageParse:
		return "Parse"
	case StageReconcile:
		return "Reconcile"
	case StageResolve:
		return "Resolve"
	case StageEmit:
		return "Emit"
	case StageTemplate:
		return "Template"
	case StageMaterialize:
		return "Write"
	case StageComplete:
		return "Done"
	default:
		return "?"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageParse:
		return "PARSE"
	case StageReconcile:
		return "RECON"
	case StageResolve:
		return "RESOLVE"
	case StageEmit:
		return "EMIT"
	case StageTemplate:
		return "TMPL"
	case StageMaterialize:
		return "WRITE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// pipelineStages are the stages shown in the stage bar, in run order.
var pipelineStages = []Stage{StageParse, StageReconcile, StageResolve, StageEmit, StageTemplate, StageMaterialize}

// ProgressEvent represents a progress update. Current and Total are bytes
// while a template downloads; Total is 0 when there is nothing to count.
type ProgressEvent struct {
	Stage   Stage
	Current int64
	Total   int64
	Message string
}

// ErrorEvent represents a problem reported by a stage.
type ErrorEvent struct {
	Stage  Stage
	Err    error
	IsWarn bool
}

// CompletionStats summarises a finished run.
type CompletionStats struct {
	Keyboard  string
	Variant   string
	Dest      string
	Layers    int
	Keys      int
	Files     int
	CheckOnly bool
	Duration  time.Duration
	Errors    int
	Warnings  int
	Stages    map[Stage]time.Duration
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Title is shown in the TUI panel header, usually the keyboard file.
	Title string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithTitle sets the panel title.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when --plain is specified.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	// Try TUI mode, fall back to plain on failure
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
