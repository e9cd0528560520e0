// Package pipeline runs a generation end to end: parse both documents,
// reconcile, resolve keycodes, emit fragments, fetch the template and
// materialize the project.
//
// Any failure aborts the run before the destination is touched.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/rmkgen/internal/emit"
	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/hardware"
	"github.com/Aman-CERP/rmkgen/internal/keycode"
	"github.com/Aman-CERP/rmkgen/internal/keymap"
	"github.com/Aman-CERP/rmkgen/internal/layout"
	"github.com/Aman-CERP/rmkgen/internal/materialize"
	"github.com/Aman-CERP/rmkgen/internal/reconcile"
	"github.com/Aman-CERP/rmkgen/internal/template"
)

// Default input file names.
const (
	DefaultKeyboardFile = "keyboard.toml"
	DefaultKeymapFile   = "vial.json"
)

// Stage identifies a pipeline step.
type Stage string

const (
	StageParse       Stage = "parse"
	StageReconcile   Stage = "reconcile"
	StageResolve     Stage = "resolve"
	StageEmit        Stage = "emit"
	StageTemplate    Stage = "template"
	StageMaterialize Stage = "materialize"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageParse, StageReconcile, StageResolve, StageEmit, StageTemplate, StageMaterialize}

// Observer is told when each stage starts and finishes.
type Observer interface {
	StageStarted(stage Stage)
	StageFinished(stage Stage, err error)
}

// Request describes one run.
type Request struct {
	// KeyboardPath and KeymapPath locate the input documents.
	KeyboardPath string
	KeymapPath   string
	// OutputDir is the project directory. Empty derives it from the
	// keyboard name next to the keyboard file's working directory.
	OutputDir string
	// Template provides the template variant. Required unless CheckOnly.
	Template template.Source
	// Policy applies when OutputDir exists.
	Policy materialize.Policy
	// SplitPolicy assigns keys to split halves.
	SplitPolicy reconcile.SplitPolicy
	// Workers bounds keycode resolution concurrency. 0 selects NumCPU.
	Workers int
	// CheckOnly stops after emission; nothing is fetched or written.
	CheckOnly bool
	// Observer, if set, receives stage events.
	Observer Observer
}

// Result describes a successful run.
type Result struct {
	Hardware  *hardware.Config
	Keymap    *keymap.Config
	Layout    *layout.Unified
	Fragments []emit.Fragment
	// Variant is the template folder the keyboard needs.
	Variant string
	// Dest is the project directory, empty for CheckOnly runs.
	Dest string
	// Project is nil for CheckOnly runs.
	Project  *materialize.Result
	Duration time.Duration
}

// Run executes req.
func Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if req.KeyboardPath == "" {
		req.KeyboardPath = DefaultKeyboardFile
	}
	if req.KeymapPath == "" {
		req.KeymapPath = DefaultKeymapFile
	}
	if !req.CheckOnly && req.Template == nil {
		return nil, errors.InternalError("pipeline run without a template source", nil)
	}
	policy, err := materialize.ParsePolicy(string(req.Policy))
	if err != nil {
		return nil, err
	}
	req.Policy = policy

	r := &runner{req: req}
	res := &Result{}

	if err := r.stage(StageParse, func() (err error) {
		res.Hardware, res.Keymap, err = parse(ctx, req.KeyboardPath, req.KeymapPath)
		return err
	}); err != nil {
		return nil, err
	}
	res.Variant = res.Hardware.Variant()

	if err := r.stage(StageReconcile, func() (err error) {
		res.Layout, err = reconcile.Reconcile(res.Hardware, res.Keymap, req.SplitPolicy)
		return err
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageResolve, func() (err error) {
		res.Layout, err = keycode.NewResolver(keycode.WithWorkers(req.Workers)).Resolve(ctx, res.Layout)
		return err
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageEmit, func() (err error) {
		res.Fragments, err = emit.Emit(res.Layout)
		return err
	}); err != nil {
		return nil, err
	}

	if req.CheckOnly {
		res.Duration = time.Since(start)
		slog.Info("check_complete",
			slog.String("keyboard", res.Hardware.Name),
			slog.Int("fragments", len(res.Fragments)),
			slog.Duration("duration", res.Duration))
		return res, nil
	}

	var tree *template.Tree
	if err := r.stage(StageTemplate, func() (err error) {
		tree, err = req.Template.Fetch(ctx, res.Variant)
		return err
	}); err != nil {
		return nil, err
	}

	res.Dest = req.OutputDir
	if res.Dest == "" {
		res.Dest = DefaultOutputDir(res.Hardware.Name)
	}
	extras := []emit.Fragment{
		{Path: DefaultKeyboardFile, Content: string(res.Hardware.Raw)},
		{Path: DefaultKeymapFile, Content: string(res.Keymap.Raw)},
	}
	m := materialize.New(
		materialize.WithPolicy(req.Policy),
		materialize.WithManifest(template.ManifestFor(res.Hardware.IsSplit())),
	)
	if err := r.stage(StageMaterialize, func() (err error) {
		res.Project, err = m.Materialize(ctx, tree, res.Fragments, extras, res.Dest)
		return err
	}); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	slog.Info("generate_complete",
		slog.String("keyboard", res.Hardware.Name),
		slog.String("variant", res.Variant),
		slog.String("template", req.Template.String()),
		slog.String("dest", res.Dest),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// DefaultOutputDir derives the project directory from the keyboard name.
func DefaultOutputDir(name string) string {
	dir := strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(strings.TrimSpace(name))
	if dir == "" || dir == "." || dir == ".." {
		return "keyboard"
	}
	return dir
}

type runner struct {
	req Request
}

func (r *runner) stage(s Stage, fn func() error) error {
	if r.req.Observer != nil {
		r.req.Observer.StageStarted(s)
	}
	start := time.Now()
	err := fn()
	if r.req.Observer != nil {
		r.req.Observer.StageFinished(s, err)
	}
	if err != nil {
		slog.Debug("stage_failed",
			slog.String("stage", string(s)),
			slog.Int("problems", len(errors.Problems(err))),
			slog.Duration("duration", time.Since(start)))
		return err
	}
	slog.Debug("stage_complete", slog.String("stage", string(s)), slog.Duration("duration", time.Since(start)))
	return nil
}

// parse loads both documents concurrently. When both fail, the problems of
// both are returned, hardware first.
func parse(ctx context.Context, keyboardPath, keymapPath string) (*hardware.Config, *keymap.Config, error) {
	var (
		hw           *hardware.Config
		km           *keymap.Config
		hwErr, kmErr error
	)
	// Parse failures are collected, not propagated, so that one document's
	// failure does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		hw, hwErr = hardware.Load(keyboardPath)
		return nil
	})
	g.Go(func() error {
		km, kmErr = keymap.Load(keymapPath)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var report errors.Report
	report.Merge(hwErr)
	report.Merge(kmErr)
	if err := report.Err(); err != nil {
		return nil, nil, err
	}
	return hw, km, nil
}
