package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

func TestReportRenderer_RenderProblems(t *testing.T) {
	// Given: a report with an input problem and a generator defect
	buf := &bytes.Buffer{}
	r := NewReportRenderer(buf, true)
	var rep errors.Report
	rep.Add(
		errors.New(errors.ErrCodeAddressOutOfBounds, "key 3 at (4, 0) is outside the 4x6 matrix", nil).
			WithDetail("file", "vial.json").WithDetail("address", "4,0").
			WithSuggestion("check rows in keyboard.toml"),
		errors.EmissionError("layout has unresolved keycodes"),
	)

	// When: rendering
	r.RenderProblems(rep.Err())

	// Then: both are listed with location, hint, code and the defect label
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "2 problems found\n"), out)
	assert.Contains(t, out, "✗ key 3 at (4, 0) is outside the 4x6 matrix\n")
	assert.Contains(t, out, "at   file=vial.json address=4,0\n")
	assert.Contains(t, out, "hint check rows in keyboard.toml\n")
	assert.Contains(t, out, "code ERR_405_ADDRESS_OUT_OF_BOUNDS\n")
	assert.Contains(t, out, "✗ internal error: layout has unresolved keycodes\n")
}

func TestReportRenderer_SingleProblem(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewReportRenderer(buf, true)

	r.RenderProblems(errors.IOError("keyboard.toml not found", nil))

	assert.True(t, strings.HasPrefix(buf.String(), "1 problem found\n"))
}

func TestReportRenderer_NilErrorPrintsNothing(t *testing.T) {
	buf := &bytes.Buffer{}

	NewReportRenderer(buf, true).RenderProblems(nil)

	assert.Empty(t, buf.String())
}

func TestReportRenderer_RenderCheck(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewReportRenderer(buf, true)

	r.RenderCheck(CheckSummary{
		Keyboard: "Test Pad", Chip: "rp2040", Variant: "rp2040",
		Rows: 2, Cols: 2, Layers: 2, Keys: 4,
		Fragments: []string{"src/keymap.rs", "src/layout.rs", "src/matrix.rs"},
	})

	out := buf.String()
	assert.Contains(t, out, "✓ Test Pad")
	assert.Contains(t, out, "rp2040 (normal)")
	assert.Contains(t, out, "2x2")
	assert.Contains(t, out, "    src/matrix.rs\n")
}
