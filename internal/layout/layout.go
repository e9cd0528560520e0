// Package layout defines the unified intermediate representation produced by
// reconciling a hardware description with a keymap description.
//
// Values in this package are built once per generation run. Pipeline stages
// never modify a Unified they receive; they return a new one.
package layout

import (
	"fmt"

	"github.com/Aman-CERP/rmkgen/internal/hardware"
)

// Address is a (row, column) position in the switch matrix.
type Address struct {
	Row int
	Col int
}

// String returns "(row,col)".
func (a Address) String() string {
	return fmt.Sprintf("(%d,%d)", a.Row, a.Col)
}

// Placement is the physical position of a key in key units.
type Placement struct {
	X, Y float64
	W, H float64
}

// Key is one physical key of the keyboard.
type Key struct {
	// Index is the key's position in layout order.
	Index int
	// Address is the key's matrix address.
	Address Address
	// Placement is the key's physical placement.
	Placement Placement
	// Half is the index of the split half owning the key, or 0 when the
	// keyboard is not split.
	Half int
	// Tokens holds the raw keymap token of this key for every layer.
	Tokens []string
	// Keycodes holds the resolved keycode for every layer. Nil until resolved.
	Keycodes []Keycode
}

// Rect is a half-open rectangle of matrix addresses.
type Rect struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// Contains reports whether a lies inside the rectangle.
func (r Rect) Contains(a Address) bool {
	return a.Row >= r.RowStart && a.Row < r.RowEnd && a.Col >= r.ColStart && a.Col < r.ColEnd
}

// Intersect returns the overlap of r and o and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		RowStart: max(r.RowStart, o.RowStart),
		RowEnd:   min(r.RowEnd, o.RowEnd),
		ColStart: max(r.ColStart, o.ColStart),
		ColEnd:   min(r.ColEnd, o.ColEnd),
	}
	return out, out.RowStart < out.RowEnd && out.ColStart < out.ColEnd
}

// String returns "rows [a,b) x cols [c,d)".
func (r Rect) String() string {
	return fmt.Sprintf("rows [%d,%d) x cols [%d,%d)", r.RowStart, r.RowEnd, r.ColStart, r.ColEnd)
}

// Half is a split half bound to the address range it owns.
type Half struct {
	Name     string
	Central  bool
	Range    Rect
	Hardware hardware.Half
}

// Unified is the single source of truth after reconciliation.
type Unified struct {
	// Name is the keyboard name.
	Name string
	// Chip is the target chip identifier.
	Chip string
	// Rows and Cols are the matrix dimensions.
	Rows, Cols int
	// NumLayers is the number of keymap layers.
	NumLayers int
	// Keys are the physical keys in layout order.
	Keys []Key
	// Halves are the split halves, nil for a non-split keyboard.
	Halves []Half
	// Hardware is the hardware description used for pin initialization.
	Hardware *hardware.Config
	// KeymapPath is the keymap file the keys and tokens came from.
	KeymapPath string
	// Resolved is true once every key carries a keycode for every layer.
	Resolved bool
}

// Split reports whether the keyboard is split.
func (u *Unified) Split() bool {
	return len(u.Halves) > 0
}

// InBounds reports whether a lies inside the matrix.
func (u *Unified) InBounds(a Address) bool {
	return a.Row >= 0 && a.Row < u.Rows && a.Col >= 0 && a.Col < u.Cols
}

// WithKeycodes returns a copy of u whose keys carry the given keycodes,
// indexed [layer][key]. The receiver is not modified.
func (u *Unified) WithKeycodes(codes [][]Keycode) *Unified {
	out := *u
	out.Keys = make([]Key, len(u.Keys))
	for i, k := range u.Keys {
		k.Tokens = append([]string(nil), k.Tokens...)
		k.Keycodes = make([]Keycode, len(codes))
		for l := range codes {
			k.Keycodes[l] = codes[l][i]
		}
		out.Keys[i] = k
	}
	out.Halves = append([]Half(nil), u.Halves...)
	out.Resolved = true
	return &out
}

// Grid returns, for every layer, a rows x cols grid of keycodes in matrix
// order. Matrix cells without a physical key hold None.
func (u *Unified) Grid() ([][][]Keycode, error) {
	if !u.Resolved {
		return nil, fmt.Errorf("layout is not resolved")
	}
	grid := make([][][]Keycode, u.NumLayers)
	for l := range grid {
		grid[l] = make([][]Keycode, u.Rows)
		for r := range grid[l] {
			grid[l][r] = make([]Keycode, u.Cols)
			for c := range grid[l][r] {
				grid[l][r][c] = None()
			}
		}
	}
	for _, k := range u.Keys {
		if !u.InBounds(k.Address) {
			return nil, fmt.Errorf("key %d address %s outside %dx%d matrix", k.Index, k.Address, u.Rows, u.Cols)
		}
		if len(k.Keycodes) != u.NumLayers {
			return nil, fmt.Errorf("key %d has %d keycodes, want %d", k.Index, len(k.Keycodes), u.NumLayers)
		}
		for l, kc := range k.Keycodes {
			grid[l][k.Address.Row][k.Address.Col] = kc
		}
	}
	return grid, nil
}
