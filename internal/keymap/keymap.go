// Package keymap parses the Vial keymap description: the physical layout in
// KLE form under layouts.keymap and the per-layer token grid under layers.
package keymap

import (
	"sort"

	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// SupportedSchemaVersion is the highest vial.json schema_version understood.
const SupportedSchemaVersion = 1

// Position is one key of the physical layout.
type Position struct {
	// Label is the first legend line, "row,col".
	Label string
	// Address is the matrix address encoded in the label.
	Address layout.Address
	// Placement is the key's position in key units.
	Placement layout.Placement
}

// MatrixSize is the optional matrix declaration of a Vial definition.
type MatrixSize struct {
	Rows int
	Cols int
}

// Config is a validated keymap description.
type Config struct {
	// Path is the file the keymap was read from.
	Path string
	// Name is the optional keyboard name in the document.
	Name string
	// Positions are the key positions in layout order.
	Positions []Position
	// Layers holds one token per position for every layer.
	Layers [][]string
	// Matrix is the declared matrix size, nil when absent.
	Matrix *MatrixSize
	// Extra maps unrecognised top-level keys to their raw JSON text.
	Extra map[string]string
	// Raw is the document as read.
	Raw []byte
}

// NumKeys returns the number of key positions.
func (c *Config) NumKeys() int {
	return len(c.Positions)
}

// NumLayers returns the number of layers.
func (c *Config) NumLayers() int {
	return len(c.Layers)
}

// ExtraKeys returns the unrecognised top-level keys, sorted.
func (c *Config) ExtraKeys() []string {
	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
