// Package hardware parses the keyboard.toml hardware description: chip,
// switch matrix wiring, split topology and peripherals.
//
// Parsing is two steps: TOML is decoded into a document that mirrors the file,
// then the document is validated and converted into a Config. Unknown tables
// and keys are ignored so newer keyboard.toml files still load. Every problem
// found in one file is reported together.
package hardware

import (
	"fmt"
)

// SupportedSchemaVersion is the highest keyboard.toml schema_version understood.
// Files without schema_version are treated as version 1.
const SupportedSchemaVersion = 1

// PlaceholderPin marks an unpopulated cell in a direct-pin grid.
const PlaceholderPin = "_"

// MatrixType is the kind of switch matrix.
type MatrixType string

const (
	// MatrixNormal is a row/column scanned matrix.
	MatrixNormal MatrixType = "normal"
	// MatrixDirectPin wires every switch to its own pin.
	MatrixDirectPin MatrixType = "direct_pin"
)

// Connection is the link used between split halves.
type Connection string

const (
	ConnectionSerial Connection = "serial"
	ConnectionBLE    Connection = "ble"
)

// Matrix describes how switches are wired to pins.
type Matrix struct {
	Type MatrixType
	// InputPins and OutputPins are the pins as declared in the file.
	InputPins  []string
	OutputPins []string
	// DirectPins is the pin grid of a direct-pin matrix, rows first.
	DirectPins [][]string
	// Row2Col is true when diodes point from rows to columns, which makes
	// the input pins the columns.
	Row2Col bool
}

// RowPins returns the pins driving matrix rows.
func (m Matrix) RowPins() []string {
	if m.Row2Col {
		return m.OutputPins
	}
	return m.InputPins
}

// ColPins returns the pins driving matrix columns.
func (m Matrix) ColPins() []string {
	if m.Row2Col {
		return m.InputPins
	}
	return m.OutputPins
}

// Dims returns the number of rows and columns the wiring provides.
func (m Matrix) Dims() (rows, cols int) {
	if m.Type == MatrixDirectPin {
		if len(m.DirectPins) == 0 {
			return 0, 0
		}
		return len(m.DirectPins), len(m.DirectPins[0])
	}
	return len(m.RowPins()), len(m.ColPins())
}

// SerialLink is a UART used to connect split halves.
type SerialLink struct {
	Instance string
	TxPin    string
	RxPin    string
}

// Half is one half of a split keyboard.
type Half struct {
	// Name is "central" or "peripheral<N>".
	Name      string
	Central   bool
	Rows      int
	Cols      int
	RowOffset int
	ColOffset int
	Matrix    Matrix
	Serial    []SerialLink
}

// Split describes a split keyboard. Halves[0] is the central half.
type Split struct {
	Connection Connection
	Halves     []Half
}

// Encoder is a rotary encoder.
type Encoder struct {
	PinA string
	PinB string
}

// Indicator is a lock-state LED.
type Indicator struct {
	Name      string
	Pin       string
	LowActive bool
}

// RGB is an addressable LED strip.
type RGB struct {
	DataPin string
	NumLEDs int
}

// Display is an I2C display.
type Display struct {
	Driver string
	SDAPin string
	SCLPin string
}

// Peripherals groups optional devices attached to the central MCU.
type Peripherals struct {
	Encoders   []Encoder
	Indicators []Indicator
	RGB        *RGB
	Display    *Display
}

// Config is a validated hardware description.
type Config struct {
	// Path is the file the config was read from.
	Path string
	// Name is the keyboard name.
	Name string
	// Board is the board name, empty when the chip was given directly.
	Board string
	// Chip is the target chip.
	Chip string
	// Matrix is the wiring of a non-split keyboard. Zero for split keyboards.
	Matrix Matrix
	// Rows and Cols are the overall matrix dimensions.
	Rows, Cols int
	// Split is non-nil for split keyboards.
	Split *Split
	// Peripherals are optional devices.
	Peripherals Peripherals
	// Raw is the document as read.
	Raw []byte
}

// IsSplit reports whether the keyboard is split.
func (c *Config) IsSplit() bool {
	return c.Split != nil
}

// Variant returns the template folder for this keyboard: the chip name,
// suffixed with "_split" for split keyboards.
func (c *Config) Variant() string {
	if c.IsSplit() {
		return c.Chip + "_split"
	}
	return c.Chip
}

// Cells returns the number of matrix cells.
func (c *Config) Cells() int {
	return c.Rows * c.Cols
}

// String returns a short description used in logs.
func (c *Config) String() string {
	kind := "normal"
	if c.IsSplit() {
		kind = fmt.Sprintf("split/%d halves", len(c.Split.Halves))
	}
	return fmt.Sprintf("%s (%s, %dx%d, %s)", c.Name, c.Chip, c.Rows, c.Cols, kind)
}
