// Package reconcile cross-checks a hardware description against a keymap
// description and binds them into a single layout.Unified.
//
// Every check runs even when an earlier one fails, so a single run reports all
// inconsistencies between the two documents. Checks are reported in a fixed
// order: matrix size, address bounds, split topology, duplicate addresses.
package reconcile

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/hardware"
	"github.com/Aman-CERP/rmkgen/internal/keymap"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// Reconcile validates hw against km and returns the unresolved IR.
// Keycodes are not resolved; each key carries its raw tokens.
func Reconcile(hw *hardware.Config, km *keymap.Config, policy SplitPolicy) (*layout.Unified, error) {
	if hw == nil || km == nil {
		return nil, errors.InternalError("reconcile called without both documents", nil)
	}
	if policy == "" {
		policy = SplitByOffsets
	}
	if !policy.Valid() {
		return nil, errors.ConfigError(fmt.Sprintf("unknown split policy %q", policy), nil).
			WithSuggestion("use one of: " + policyList())
	}

	u := &layout.Unified{
		Name:       hw.Name,
		Chip:       hw.Chip,
		Rows:       hw.Rows,
		Cols:       hw.Cols,
		NumLayers:  km.NumLayers(),
		Hardware:   hw,
		KeymapPath: km.Path,
		Keys:       bindKeys(km),
	}

	c := &checker{hw: hw, km: km, u: u}
	c.matrixSize()
	c.bounds()
	if hw.IsSplit() {
		u.Halves = c.split(policy)
	}
	c.duplicates()

	if err := c.report.Err(); err != nil {
		slog.Debug("reconcile_failed",
			slog.String("keyboard", hw.Name),
			slog.Int("problems", c.report.Len()))
		return nil, err
	}

	slog.Debug("reconcile_complete",
		slog.String("keyboard", hw.Name),
		slog.Int("keys", len(u.Keys)),
		slog.Int("layers", u.NumLayers),
		slog.Int("halves", len(u.Halves)))
	return u, nil
}

func bindKeys(km *keymap.Config) []layout.Key {
	keys := make([]layout.Key, len(km.Positions))
	for i, pos := range km.Positions {
		tokens := make([]string, len(km.Layers))
		for l, layer := range km.Layers {
			if i < len(layer) {
				tokens[l] = layer[i]
			}
		}
		keys[i] = layout.Key{
			Index:     i,
			Address:   pos.Address,
			Placement: pos.Placement,
			Tokens:    tokens,
		}
	}
	return keys
}

type checker struct {
	hw     *hardware.Config
	km     *keymap.Config
	u      *layout.Unified
	report errors.Report
}

func (c *checker) problem(code, format string, args ...any) *errors.RmkError {
	e := errors.Newf(code, format, args...).
		WithDetail("file", c.km.Path)
	c.report.Add(e)
	return e
}

func (c *checker) matrixSize() {
	cells := c.hw.Cells()
	if n := len(c.u.Keys); n > cells {
		c.problem(errors.ErrCodeMatrixTooSmall,
			"keymap has %d keys but the %dx%d matrix only has %d positions", n, c.hw.Rows, c.hw.Cols, cells).
			WithDetail("file", c.hw.Path).
			WithSuggestion("add row or column pins in keyboard.toml, or remove keys from the layout")
	}
	if m := c.km.Matrix; m != nil && (m.Rows > c.hw.Rows || m.Cols > c.hw.Cols) {
		c.problem(errors.ErrCodeMatrixTooSmall,
			"keymap declares a %dx%d matrix but the hardware matrix is %dx%d", m.Rows, m.Cols, c.hw.Rows, c.hw.Cols).
			WithDetail("field", "matrix")
	}
}

func (c *checker) bounds() {
	for _, k := range c.u.Keys {
		if c.u.InBounds(k.Address) {
			continue
		}
		c.problem(errors.ErrCodeAddressOutOfBounds,
			"key %d at %s is outside the %dx%d matrix", k.Index, k.Address, c.u.Rows, c.u.Cols).
			WithDetail("position", strconv.Itoa(k.Index)).
			WithDetail("address", k.Address.String())
	}
}

func (c *checker) duplicates() {
	seen := make(map[layout.Address]int, len(c.u.Keys))
	for _, k := range c.u.Keys {
		first, ok := seen[k.Address]
		if !ok {
			seen[k.Address] = k.Index
			continue
		}
		c.problem(errors.ErrCodeDuplicateAddress,
			"keys %d and %d share matrix address %s", first, k.Index, k.Address).
			WithDetail("position", strconv.Itoa(k.Index)).
			WithDetail("address", k.Address.String()).
			WithDetail("first_position", strconv.Itoa(first))
	}
}
