// Package emit renders a resolved layout.Unified into Rust source fragments
// for an RMK firmware project.
//
// Output is a pure function of the layout: the same input always produces
// byte-identical fragments, in path order, with no timestamps.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// Fixed paths of the generated fragments, relative to the project root.
const (
	KeymapPath = "src/keymap.rs"
	LayoutPath = "src/layout.rs"
	MatrixPath = "src/matrix.rs"
)

// header starts every generated file.
const header = "// Generated by rmkgen from keyboard.toml and vial.json. Do not edit.\n"

// Fragment is one generated file.
type Fragment struct {
	// Path is slash-separated and relative to the project root.
	Path    string
	Content string
}

// Paths returns the paths of frags in order.
func Paths(frags []Fragment) []string {
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = f.Path
	}
	return out
}

// Emit renders every fragment for u. u must be resolved.
func Emit(u *layout.Unified) ([]Fragment, error) {
	if u == nil {
		return nil, errors.EmissionError("emit called without a layout")
	}
	if !u.Resolved {
		return nil, errors.EmissionError("layout has unresolved keycodes")
	}
	grid, err := u.Grid()
	if err != nil {
		return nil, errors.EmissionError(err.Error())
	}

	keymap, err := renderKeymap(u, grid)
	if err != nil {
		return nil, err
	}
	frags := []Fragment{
		{Path: KeymapPath, Content: keymap},
		{Path: LayoutPath, Content: renderLayout(u)},
		{Path: MatrixPath, Content: renderMatrix(u)},
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i].Path < frags[j].Path })
	return frags, nil
}

func renderKeymap(u *layout.Unified, grid [][][]layout.Keycode) (string, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("use rmk::action::KeyAction;\n")
	b.WriteString("use rmk::keycode::ModifierCombination;\n")
	b.WriteString("use rmk::{a, df, k, layer, lt, mo, osl, tg, to, wm};\n\n")
	fmt.Fprintf(&b, "pub(crate) const COL: usize = %d;\n", u.Cols)
	fmt.Fprintf(&b, "pub(crate) const ROW: usize = %d;\n", u.Rows)
	fmt.Fprintf(&b, "pub(crate) const NUM_LAYER: usize = %d;\n\n", u.NumLayers)
	b.WriteString("#[rustfmt::skip]\n")
	b.WriteString("pub const fn get_default_keymap() -> [[[KeyAction; COL]; ROW]; NUM_LAYER] {\n")
	b.WriteString("    [\n")
	for l, rows := range grid {
		fmt.Fprintf(&b, "        // layer %d\n", l)
		b.WriteString("        layer!([\n")
		for _, row := range rows {
			cells := make([]string, len(row))
			for c, kc := range row {
				action, err := Action(kc)
				if err != nil {
					return "", err
				}
				cells[c] = action
			}
			fmt.Fprintf(&b, "            [%s],\n", strings.Join(cells, ", "))
		}
		b.WriteString("        ]),\n")
	}
	b.WriteString("    ]\n")
	b.WriteString("}\n")
	return b.String(), nil
}

// Action renders a keycode as an RMK KeyAction macro invocation.
func Action(kc layout.Keycode) (string, error) {
	switch kc.Kind {
	case layout.KindPlain:
		if kc.Code == "" {
			return "", errors.EmissionError("plain keycode without a code")
		}
		return fmt.Sprintf("k!(%s)", kc.Code), nil
	case layout.KindModified:
		if kc.Code == "" || kc.Mods == 0 || kc.Mods.MixesSides() {
			return "", errors.EmissionError(fmt.Sprintf("invalid modified keycode %s", kc))
		}
		return fmt.Sprintf("wm!(%s, %s)", kc.Code, modifierCombination(kc.Mods)), nil
	case layout.KindLayer:
		if kc.Layer < 0 {
			return "", errors.EmissionError(fmt.Sprintf("negative layer in %s", kc))
		}
		switch kc.Action {
		case layout.LayerMomentary:
			return fmt.Sprintf("mo!(%d)", kc.Layer), nil
		case layout.LayerToggle:
			return fmt.Sprintf("tg!(%d)", kc.Layer), nil
		case layout.LayerOneShot:
			return fmt.Sprintf("osl!(%d)", kc.Layer), nil
		case layout.LayerTo:
			return fmt.Sprintf("to!(%d)", kc.Layer), nil
		case layout.LayerDefault:
			return fmt.Sprintf("df!(%d)", kc.Layer), nil
		case layout.LayerTap:
			if kc.Code == "" {
				return "", errors.EmissionError("layer-tap without a tap keycode")
			}
			return fmt.Sprintf("lt!(%d, %s)", kc.Layer, kc.Code), nil
		}
		return "", errors.EmissionError(fmt.Sprintf("unknown layer action %d", kc.Action))
	case layout.KindMacro:
		return fmt.Sprintf("k!(Macro%d)", kc.Macro), nil
	case layout.KindTransparent:
		return "a!(Transparent)", nil
	case layout.KindNone:
		return "a!(No)", nil
	}
	return "", errors.EmissionError(fmt.Sprintf("unknown keycode kind %d", kc.Kind))
}

// modifierCombination renders RMK's ModifierCombination::new_from(right, gui, alt, shift, ctrl).
func modifierCombination(m layout.Modifier) string {
	return fmt.Sprintf("ModifierCombination::new_from(%t, %t, %t, %t, %t)",
		m.Right(), m.Gui(), m.Alt(), m.Shift(), m.Ctrl())
}

func renderLayout(u *layout.Unified) string {
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "pub(crate) const NUM_KEYS: usize = %d;\n\n", len(u.Keys))

	positions := make([]string, len(u.Keys))
	placement := make([]string, len(u.Keys))
	for i, k := range u.Keys {
		positions[i] = fmt.Sprintf("(%d, %d)", k.Address.Row, k.Address.Col)
		placement[i] = fmt.Sprintf("(%s, %s)", rustFloat(k.Placement.X), rustFloat(k.Placement.Y))
	}
	b.WriteString("/// Matrix (row, col) of every key, in layout order.\n")
	b.WriteString("pub(crate) const KEY_POSITIONS: [(u8, u8); NUM_KEYS] = [\n")
	writeItems(&b, positions)
	b.WriteString("];\n\n")
	b.WriteString("/// Physical (x, y) of every key in key units, in layout order.\n")
	b.WriteString("pub(crate) const KEY_PLACEMENT: [(f32, f32); NUM_KEYS] = [\n")
	writeItems(&b, placement)
	b.WriteString("];\n")
	return b.String()
}

// writeItems writes one item per line, indented, each followed by a comma.
func writeItems(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "    %s,\n", it)
	}
}
