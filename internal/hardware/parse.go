package hardware

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// document mirrors keyboard.toml. Only load-bearing fields are declared;
// anything else in the file is ignored.
type document struct {
	SchemaVersion int               `toml:"schema_version"`
	Keyboard      *keyboardSection  `toml:"keyboard"`
	Matrix        *matrixSection    `toml:"matrix"`
	Layout        *layoutSection    `toml:"layout"`
	Split         *splitSection     `toml:"split"`
	Light         *lightSection     `toml:"light"`
	InputDevice   *inputDeviceTable `toml:"input_device"`
	RGB           *rgbSection       `toml:"rgb"`
	Display       *displaySection   `toml:"display"`
}

type keyboardSection struct {
	Name  string  `toml:"name"`
	Chip  *string `toml:"chip"`
	Board *string `toml:"board"`
}

type matrixSection struct {
	MatrixType string     `toml:"matrix_type"`
	InputPins  []string   `toml:"input_pins"`
	OutputPins []string   `toml:"output_pins"`
	DirectPins [][]string `toml:"direct_pins"`
	Row2Col    bool       `toml:"row2col"`
}

type layoutSection struct {
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`
}

type splitSection struct {
	Connection string        `toml:"connection"`
	Central    *halfSection  `toml:"central"`
	Peripheral []halfSection `toml:"peripheral"`
}

type halfSection struct {
	Rows      int             `toml:"rows"`
	Cols      int             `toml:"cols"`
	RowOffset int             `toml:"row_offset"`
	ColOffset int             `toml:"col_offset"`
	Serial    []serialSection `toml:"serial"`
	Matrix    *matrixSection  `toml:"matrix"`
}

type serialSection struct {
	Instance string `toml:"instance"`
	TxPin    string `toml:"tx_pin"`
	RxPin    string `toml:"rx_pin"`
}

type lightSection struct {
	CapsLock   *indicatorSection `toml:"capslock"`
	ScrollLock *indicatorSection `toml:"scrolllock"`
	NumsLock   *indicatorSection `toml:"numslock"`
}

type indicatorSection struct {
	Pin       string `toml:"pin"`
	LowActive bool   `toml:"low_active"`
}

type inputDeviceTable struct {
	Encoder []encoderSection `toml:"encoder"`
}

type encoderSection struct {
	PinA string `toml:"pin_a"`
	PinB string `toml:"pin_b"`
}

type rgbSection struct {
	DataPin string `toml:"data_pin"`
	NumLEDs int    `toml:"num_leds"`
}

type displaySection struct {
	Driver string `toml:"driver"`
	SDAPin string `toml:"sda_pin"`
	SCLPin string `toml:"scl_pin"`
}

// Load reads and parses the hardware description at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	return Parse(path, data)
}

// Parse parses a keyboard.toml document. path is only used in error details.
func Parse(path string, data []byte) (*Config, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, decodeError(path, err)
	}

	p := &parser{path: path}
	cfg := p.build(&doc)
	if err := p.report.Err(); err != nil {
		return nil, err
	}
	cfg.Raw = append([]byte(nil), data...)
	return cfg, nil
}

// readError converts a file read failure into an RmkError.
func readError(path string, err error) error {
	code := errors.ErrCodeFileNotFound
	if stderrors.Is(err, os.ErrPermission) {
		code = errors.ErrCodeFilePermission
	}
	return errors.New(code, fmt.Sprintf("cannot read hardware description %s", path), err).
		WithDetail("file", path)
}

// decodeError converts a TOML decoding failure into MalformedConfig with
// line and column when available.
func decodeError(path string, err error) error {
	e := errors.MalformedConfig(path, "", fmt.Sprintf("invalid TOML: %v", err))
	e.Cause = err
	var derr *toml.DecodeError
	if stderrors.As(err, &derr) {
		row, col := derr.Position()
		e.WithDetail("line", strconv.Itoa(row)).WithDetail("column", strconv.Itoa(col))
		if key := derr.Key(); len(key) > 0 {
			e.WithDetail("field", joinKey(key))
		}
	}
	return e
}

func joinKey(key []string) string {
	return strings.Join(key, ".")
}

// parser accumulates problems while converting a document.
type parser struct {
	path   string
	report errors.Report
}

func (p *parser) malformed(field, format string, args ...any) {
	p.report.Add(errors.MalformedConfig(p.path, field, fmt.Sprintf(format, args...)))
}

func (p *parser) build(doc *document) *Config {
	cfg := &Config{Path: p.path}

	if doc.SchemaVersion < 0 || doc.SchemaVersion > SupportedSchemaVersion {
		p.malformed("schema_version", "unsupported schema_version %d (supported: up to %d)",
			doc.SchemaVersion, SupportedSchemaVersion)
	}

	p.buildKeyboard(doc, cfg)

	switch {
	case doc.Matrix == nil && doc.Split == nil:
		p.malformed("matrix", "either a [matrix] or a [split] section must be specified")
	case doc.Matrix != nil && doc.Split != nil:
		p.malformed("matrix", "[matrix] and [split] cannot both be specified")
	case doc.Matrix != nil:
		cfg.Matrix = p.buildMatrix("matrix", doc.Matrix)
		cfg.Rows, cfg.Cols = cfg.Matrix.Dims()
		if doc.Layout != nil && (doc.Layout.Rows != 0 || doc.Layout.Cols != 0) &&
			(doc.Layout.Rows != cfg.Rows || doc.Layout.Cols != cfg.Cols) {
			p.malformed("layout", "[layout] declares a %dx%d matrix but the pins provide %dx%d",
				doc.Layout.Rows, doc.Layout.Cols, cfg.Rows, cfg.Cols)
		}
	default:
		cfg.Split = p.buildSplit(doc)
		if doc.Layout == nil || doc.Layout.Rows <= 0 || doc.Layout.Cols <= 0 {
			p.malformed("layout", "split keyboards must declare [layout] rows and cols")
		} else {
			cfg.Rows, cfg.Cols = doc.Layout.Rows, doc.Layout.Cols
		}
	}

	cfg.Peripherals = p.buildPeripherals(doc)
	p.checkPins(cfg)
	return cfg
}

func (p *parser) buildKeyboard(doc *document, cfg *Config) {
	if doc.Keyboard == nil {
		p.malformed("keyboard", "missing [keyboard] section")
		return
	}
	kb := doc.Keyboard
	cfg.Name = kb.Name
	if cfg.Name == "" {
		p.malformed("keyboard.name", "keyboard.name must be set")
	}

	switch {
	case kb.Chip == nil && kb.Board == nil:
		p.malformed("keyboard.chip", "either 'board' or 'chip' must be specified")
	case kb.Chip != nil && kb.Board != nil:
		p.malformed("keyboard.chip", "'board' and 'chip' cannot both be specified")
	case kb.Chip != nil:
		if *kb.Chip == "" {
			p.malformed("keyboard.chip", "keyboard.chip must not be empty")
		}
		cfg.Chip = *kb.Chip
	default:
		chip, ok := ChipForBoard(*kb.Board)
		if !ok {
			p.report.Add(errors.MalformedConfig(p.path, "keyboard.board",
				fmt.Sprintf("unsupported board %q", *kb.Board)).
				WithSuggestion("use one of: " + knownBoardList() + ", or set keyboard.chip instead"))
			return
		}
		cfg.Board = *kb.Board
		cfg.Chip = chip
	}
}

func (p *parser) buildMatrix(field string, m *matrixSection) Matrix {
	out := Matrix{
		Type:       MatrixType(m.MatrixType),
		InputPins:  m.InputPins,
		OutputPins: m.OutputPins,
		DirectPins: m.DirectPins,
		Row2Col:    m.Row2Col,
	}
	if out.Type == "" {
		out.Type = MatrixNormal
	}

	switch out.Type {
	case MatrixNormal:
		if len(out.RowPins()) == 0 {
			p.malformed(field+"."+rowField(out), "at least one row pin is required")
		}
		if len(out.ColPins()) == 0 {
			p.malformed(field+"."+colField(out), "at least one column pin is required")
		}
	case MatrixDirectPin:
		p.checkDirectPins(field+".direct_pins", out.DirectPins)
	default:
		p.malformed(field+".matrix_type", "unknown matrix_type %q (expected %q or %q)",
			m.MatrixType, MatrixNormal, MatrixDirectPin)
	}
	return out
}

func rowField(m Matrix) string {
	if m.Row2Col {
		return "output_pins"
	}
	return "input_pins"
}

func colField(m Matrix) string {
	if m.Row2Col {
		return "input_pins"
	}
	return "output_pins"
}

func (p *parser) checkDirectPins(field string, grid [][]string) {
	if len(grid) == 0 {
		p.malformed(field, "direct_pins must contain at least one row")
		return
	}
	width := len(grid[0])
	populated := 0
	for r, row := range grid {
		if len(row) != width {
			p.malformed(fmt.Sprintf("%s[%d]", field, r), "direct_pins rows must all have %d entries, row %d has %d",
				width, r, len(row))
		}
		for _, pin := range row {
			if pin != PlaceholderPin && pin != "" {
				populated++
			}
		}
	}
	if width == 0 || populated == 0 {
		p.malformed(field, "direct_pins must contain at least one pin")
	}
}

func (p *parser) buildSplit(doc *document) *Split {
	s := doc.Split
	split := &Split{Connection: Connection(s.Connection)}
	switch split.Connection {
	case ConnectionSerial, ConnectionBLE:
	case "":
		p.malformed("split.connection", "split.connection must be %q or %q", ConnectionSerial, ConnectionBLE)
	default:
		p.malformed("split.connection", "unknown split.connection %q (expected %q or %q)",
			s.Connection, ConnectionSerial, ConnectionBLE)
	}

	if s.Central == nil {
		p.malformed("split.central", "split keyboards must declare [split.central]")
	} else {
		split.Halves = append(split.Halves, p.buildHalf("split.central", "central", true, s.Central, split.Connection))
	}
	if len(s.Peripheral) == 0 {
		p.malformed("split.peripheral", "split keyboards must declare at least one [[split.peripheral]]")
	}
	for i := range s.Peripheral {
		field := fmt.Sprintf("split.peripheral[%d]", i)
		name := fmt.Sprintf("peripheral%d", i)
		split.Halves = append(split.Halves, p.buildHalf(field, name, false, &s.Peripheral[i], split.Connection))
	}
	return split
}

func (p *parser) buildHalf(field, name string, central bool, h *halfSection, conn Connection) Half {
	half := Half{
		Name:      name,
		Central:   central,
		Rows:      h.Rows,
		Cols:      h.Cols,
		RowOffset: h.RowOffset,
		ColOffset: h.ColOffset,
	}
	if h.Rows <= 0 || h.Cols <= 0 {
		p.malformed(field, "%s must declare positive rows and cols", name)
	}
	if h.RowOffset < 0 || h.ColOffset < 0 {
		p.malformed(field, "%s offsets must not be negative", name)
	}
	if h.Matrix == nil {
		p.malformed(field+".matrix", "%s must declare its [matrix] pins", name)
	} else {
		half.Matrix = p.buildMatrix(field+".matrix", h.Matrix)
	}
	for i, s := range h.Serial {
		if s.Instance == "" || s.TxPin == "" || s.RxPin == "" {
			p.malformed(fmt.Sprintf("%s.serial[%d]", field, i), "serial links need instance, tx_pin and rx_pin")
		}
		half.Serial = append(half.Serial, SerialLink{Instance: s.Instance, TxPin: s.TxPin, RxPin: s.RxPin})
	}
	if conn == ConnectionSerial && len(half.Serial) == 0 {
		p.malformed(field+".serial", "%s needs a serial link when split.connection is %q", name, ConnectionSerial)
	}
	return half
}

func (p *parser) buildPeripherals(doc *document) Peripherals {
	var per Peripherals
	if doc.Light != nil {
		for _, ind := range []struct {
			name string
			sec  *indicatorSection
		}{
			{"capslock", doc.Light.CapsLock},
			{"scrolllock", doc.Light.ScrollLock},
			{"numslock", doc.Light.NumsLock},
		} {
			if ind.sec == nil {
				continue
			}
			if ind.sec.Pin == "" {
				p.malformed("light."+ind.name+".pin", "%s indicator needs a pin", ind.name)
				continue
			}
			per.Indicators = append(per.Indicators, Indicator{Name: ind.name, Pin: ind.sec.Pin, LowActive: ind.sec.LowActive})
		}
	}
	if doc.InputDevice != nil {
		for i, e := range doc.InputDevice.Encoder {
			if e.PinA == "" || e.PinB == "" {
				p.malformed(fmt.Sprintf("input_device.encoder[%d]", i), "encoders need pin_a and pin_b")
				continue
			}
			per.Encoders = append(per.Encoders, Encoder{PinA: e.PinA, PinB: e.PinB})
		}
	}
	if doc.RGB != nil {
		if doc.RGB.DataPin == "" || doc.RGB.NumLEDs <= 0 {
			p.malformed("rgb", "rgb needs data_pin and a positive num_leds")
		} else {
			per.RGB = &RGB{DataPin: doc.RGB.DataPin, NumLEDs: doc.RGB.NumLEDs}
		}
	}
	if doc.Display != nil {
		if doc.Display.Driver == "" || doc.Display.SDAPin == "" || doc.Display.SCLPin == "" {
			p.malformed("display", "display needs driver, sda_pin and scl_pin")
		} else {
			per.Display = &Display{Driver: doc.Display.Driver, SDAPin: doc.Display.SDAPin, SCLPin: doc.Display.SCLPin}
		}
	}
	return per
}
