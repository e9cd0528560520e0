package ui

import (
	"fmt"
	"io"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// CheckSummary describes a successful check run.
type CheckSummary struct {
	Keyboard  string
	Chip      string
	Variant   string
	Rows      int
	Cols      int
	Layers    int
	Keys      int
	Split     bool
	Fragments []string
}

// ReportRenderer prints problem reports and check summaries.
type ReportRenderer struct {
	out    io.Writer
	styles Styles
}

// NewReportRenderer creates a report renderer.
func NewReportRenderer(out io.Writer, noColor bool) *ReportRenderer {
	return &ReportRenderer{
		out:    out,
		styles: GetStyles(noColor || DetectNoColor()),
	}
}

// RenderProblems lists every problem carried by err, one block each.
// Generator defects are labelled separately from input problems.
func (r *ReportRenderer) RenderProblems(err error) {
	problems := errors.Problems(err)
	if len(problems) == 0 {
		return
	}

	noun := "problems"
	if len(problems) == 1 {
		noun = "problem"
	}
	_, _ = fmt.Fprintf(r.out, "%s\n", r.styles.Header.Render(fmt.Sprintf("%d %s found", len(problems), noun)))

	for _, p := range problems {
		label := r.styles.Error.Render("✗")
		if p.IsDefect() {
			label = r.styles.Error.Render("✗ internal error:")
		}
		_, _ = fmt.Fprintf(r.out, "\n%s %s\n", label, p.Message)
		if loc := p.Location(); loc != "" {
			_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("at  "), loc)
		}
		if p.Suggestion != "" {
			_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("hint"), r.styles.Warning.Render(p.Suggestion))
		}
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("code"), r.styles.Dim.Render(p.Code))
	}
}

// RenderCheck prints a check summary and the fragments that would be written.
func (r *ReportRenderer) RenderCheck(s CheckSummary) {
	_, _ = fmt.Fprintf(r.out, "%s %s\n\n", r.styles.Success.Render("✓"), r.styles.Header.Render(s.Keyboard))

	kind := "normal"
	if s.Split {
		kind = "split"
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s (%s)\n", r.styles.Label.Render("Chip:    "), s.Chip, kind)
	_, _ = fmt.Fprintf(r.out, "  %s %dx%d\n", r.styles.Label.Render("Matrix:  "), s.Rows, s.Cols)
	_, _ = fmt.Fprintf(r.out, "  %s %d\n", r.styles.Label.Render("Layers:  "), s.Layers)
	_, _ = fmt.Fprintf(r.out, "  %s %d\n", r.styles.Label.Render("Keys:    "), s.Keys)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Template:"), s.Variant)

	if len(s.Fragments) > 0 {
		_, _ = fmt.Fprintf(r.out, "\n  %s\n", r.styles.Label.Render("Fragments:"))
		for _, f := range s.Fragments {
			_, _ = fmt.Fprintf(r.out, "    %s\n", f)
		}
	}
}
