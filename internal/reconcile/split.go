package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// SplitPolicy selects how split halves map onto the unified matrix.
type SplitPolicy string

const (
	// SplitByOffsets places each half at its declared row_offset/col_offset.
	SplitByOffsets SplitPolicy = "offsets"
	// SplitByRows stacks halves vertically in declaration order, ignoring offsets.
	SplitByRows SplitPolicy = "rows"
	// SplitByColumns places halves side by side in declaration order, ignoring offsets.
	SplitByColumns SplitPolicy = "columns"
)

var policies = []SplitPolicy{SplitByOffsets, SplitByRows, SplitByColumns}

// Valid reports whether p is a known policy.
func (p SplitPolicy) Valid() bool {
	for _, known := range policies {
		if p == known {
			return true
		}
	}
	return false
}

// ParseSplitPolicy converts a configuration value into a SplitPolicy.
// An empty string selects SplitByOffsets.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	if s == "" {
		return SplitByOffsets, nil
	}
	p := SplitPolicy(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.ConfigError(fmt.Sprintf("unknown split policy %q", s), nil).
			WithSuggestion("use one of: " + policyList())
	}
	return p, nil
}

func policyList() string {
	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// split computes half rectangles, validates them and assigns keys to halves.
func (c *checker) split(policy SplitPolicy) []layout.Half {
	hws := c.hw.Split.Halves
	halves := make([]layout.Half, len(hws))
	rowCursor, colCursor := 0, 0
	for i, h := range hws {
		var r layout.Rect
		switch policy {
		case SplitByRows:
			r = layout.Rect{RowStart: rowCursor, RowEnd: rowCursor + h.Rows, ColStart: 0, ColEnd: h.Cols}
			rowCursor += h.Rows
		case SplitByColumns:
			r = layout.Rect{RowStart: 0, RowEnd: h.Rows, ColStart: colCursor, ColEnd: colCursor + h.Cols}
			colCursor += h.Cols
		default:
			r = layout.Rect{
				RowStart: h.RowOffset, RowEnd: h.RowOffset + h.Rows,
				ColStart: h.ColOffset, ColEnd: h.ColOffset + h.Cols,
			}
		}
		halves[i] = layout.Half{Name: h.Name, Central: h.Central, Range: r, Hardware: h}
	}

	matrix := layout.Rect{RowEnd: c.hw.Rows, ColEnd: c.hw.Cols}
	for _, h := range halves {
		if !containsRect(matrix, h.Range) {
			c.mismatch(h.Name, "half %s covers %s, outside the %dx%d matrix", h.Name, h.Range, c.hw.Rows, c.hw.Cols).
				WithDetail("range", h.Range.String())
		}
		rows, cols := h.Hardware.Matrix.Dims()
		if rows != h.Hardware.Rows || cols != h.Hardware.Cols {
			c.mismatch(h.Name, "half %s declares %dx%d but its pins provide %dx%d",
				h.Name, h.Hardware.Rows, h.Hardware.Cols, rows, cols).
				WithDetail("file", c.hw.Path)
		}
	}
	for i := range halves {
		for j := i + 1; j < len(halves); j++ {
			if overlap, ok := halves[i].Range.Intersect(halves[j].Range); ok {
				c.mismatch(halves[j].Name, "halves %s and %s overlap at %s",
					halves[i].Name, halves[j].Name, overlap).
					WithDetail("range", overlap.String())
			}
		}
	}

	counts := make([]int, len(halves))
	for i := range c.u.Keys {
		k := &c.u.Keys[i]
		if !c.u.InBounds(k.Address) {
			continue
		}
		owner := -1
		for h := range halves {
			if halves[h].Range.Contains(k.Address) {
				owner = h
				break
			}
		}
		if owner < 0 {
			c.mismatch("", "key %d at %s does not belong to any split half", k.Index, k.Address).
				WithDetail("position", strconv.Itoa(k.Index)).
				WithDetail("address", k.Address.String())
			continue
		}
		k.Half = owner
		counts[owner]++
	}
	for i, h := range halves {
		if counts[i] == 0 {
			c.mismatch(h.Name, "half %s has no keys in the keymap", h.Name)
		}
	}
	return halves
}

func (c *checker) mismatch(half, format string, args ...any) *errors.RmkError {
	e := c.problem(errors.ErrCodeSplitLayoutMismatch, format, args...)
	if half != "" {
		e.WithDetail("half", half)
	}
	return e
}

func containsRect(outer, inner layout.Rect) bool {
	return inner.RowStart >= outer.RowStart && inner.RowEnd <= outer.RowEnd &&
		inner.ColStart >= outer.ColStart && inner.ColEnd <= outer.ColEnd
}
