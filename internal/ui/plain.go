package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/output"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	stage   Stage
	started bool
	lastPct int
	lastMsg string
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output, lastPct: -1}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer. Download progress is printed at most
// once per 25%; repeated messages within a stage are dropped.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || event.Stage != r.stage {
		r.started = true
		r.stage = event.Stage
		r.lastPct = -1
		r.lastMsg = ""
	}

	msg := event.Message
	if msg == "" {
		msg = event.Stage.String()
	}

	if event.Total > 0 {
		pct := int(event.Current * 100 / event.Total)
		if pct/25 == r.lastPct/25 && r.lastPct >= 0 {
			return
		}
		r.lastPct = pct
		_, _ = fmt.Fprintf(r.out, "[%s] %s %s/%s (%d%%)\n", event.Stage.Icon(), msg,
			output.FormatBytes(event.Current), output.FormatBytes(event.Total), pct)
		return
	}
	if msg == r.lastMsg {
		return
	}
	r.lastMsg = msg
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}
	for _, p := range errors.Problems(event.Err) {
		if loc := p.Location(); loc != "" {
			_, _ = fmt.Fprintf(r.out, "%s: %s (%s) [%s]\n", prefix, p.Message, loc, p.Code)
		} else {
			_, _ = fmt.Fprintf(r.out, "%s: %s [%s]\n", prefix, p.Message, p.Code)
		}
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats.CheckOnly {
		_, _ = fmt.Fprintf(r.out, "Checked %s: %d layers, %d keys in %s\n",
			stats.Keyboard, stats.Layers, stats.Keys, stats.Duration.Round(time.Millisecond))
	} else {
		_, _ = fmt.Fprintf(r.out, "Generated %s (%s): %d files in %s\n  -> %s\n",
			stats.Keyboard, stats.Variant, stats.Files, stats.Duration.Round(time.Millisecond), stats.Dest)
	}
	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, "  %d errors, %d warnings\n", stats.Errors, stats.Warnings)
	}
	if len(stats.Stages) > 0 {
		for _, s := range pipelineStages {
			if d, ok := stats.Stages[s]; ok {
				_, _ = fmt.Fprintf(r.out, "  %-18s %s\n", s.String()+":", d.Round(time.Microsecond))
			}
		}
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
