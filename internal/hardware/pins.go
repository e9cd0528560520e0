package hardware

import (
	"fmt"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// pinUse records where a pin was first claimed.
type pinUse struct {
	role  string
	field string
}

// pinSet tracks pin assignments within one MCU. Each split half is its own
// namespace since the halves are separate chips.
type pinSet struct {
	file      string
	namespace string
	used      map[string]pinUse
}

func newPinSet(file, namespace string) *pinSet {
	return &pinSet{file: file, namespace: namespace, used: make(map[string]pinUse)}
}

// claim registers pin under role. shared roles may reuse the same pin
// (direct-pin grids list a pin once per switch position on some boards).
func (s *pinSet) claim(pin, role, field string, shared bool) *errors.RmkError {
	if pin == "" || pin == PlaceholderPin {
		return nil
	}
	prev, ok := s.used[pin]
	if !ok {
		s.used[pin] = pinUse{role: role, field: field}
		return nil
	}
	if shared && prev.role == role {
		return nil
	}
	return errors.Newf(errors.ErrCodeDuplicatePin,
		"pin %s is used as %s (%s) and as %s (%s)", pin, prev.role, prev.field, role, field).
		WithDetail("file", s.file).
		WithDetail("pin", pin).
		WithDetail("half", s.namespace).
		WithSuggestion("each pin can only serve one purpose on a board")
}

func (s *pinSet) claimAll(pins []string, role, field string, shared bool, r *errors.Report) {
	for i, pin := range pins {
		r.Add(s.claim(pin, role, fmt.Sprintf("%s[%d]", field, i), shared))
	}
}

func (s *pinSet) claimMatrix(m Matrix, field string, r *errors.Report) {
	if m.Type == MatrixDirectPin {
		for i, row := range m.DirectPins {
			s.claimAll(row, "direct", fmt.Sprintf("%s.direct_pins[%d]", field, i), true, r)
		}
		return
	}
	s.claimAll(m.RowPins(), "row", field+"."+rowField(m), false, r)
	s.claimAll(m.ColPins(), "column", field+"."+colField(m), false, r)
}

func (s *pinSet) claimSerial(links []SerialLink, field string, r *errors.Report) {
	for i, l := range links {
		f := fmt.Sprintf("%s.serial[%d]", field, i)
		r.Add(s.claim(l.TxPin, "serial tx", f+".tx_pin", false))
		r.Add(s.claim(l.RxPin, "serial rx", f+".rx_pin", false))
	}
}

func (s *pinSet) claimPeripherals(p Peripherals, r *errors.Report) {
	for _, ind := range p.Indicators {
		r.Add(s.claim(ind.Pin, ind.Name+" indicator", "light."+ind.Name+".pin", false))
	}
	for i, e := range p.Encoders {
		f := fmt.Sprintf("input_device.encoder[%d]", i)
		r.Add(s.claim(e.PinA, "encoder", f+".pin_a", false))
		r.Add(s.claim(e.PinB, "encoder", f+".pin_b", false))
	}
	if p.RGB != nil {
		r.Add(s.claim(p.RGB.DataPin, "rgb data", "rgb.data_pin", false))
	}
	if p.Display != nil {
		r.Add(s.claim(p.Display.SDAPin, "display sda", "display.sda_pin", false))
		r.Add(s.claim(p.Display.SCLPin, "display scl", "display.scl_pin", false))
	}
}

// checkPins reports every pin claimed twice within the same MCU.
// Peripherals are attached to the central MCU.
func (p *parser) checkPins(cfg *Config) {
	if !cfg.IsSplit() {
		set := newPinSet(p.path, "board")
		set.claimMatrix(cfg.Matrix, "matrix", &p.report)
		set.claimPeripherals(cfg.Peripherals, &p.report)
		return
	}
	peripheral := 0
	for _, h := range cfg.Split.Halves {
		set := newPinSet(p.path, h.Name)
		field := "split.central"
		if !h.Central {
			field = fmt.Sprintf("split.peripheral[%d]", peripheral)
			peripheral++
		}
		set.claimMatrix(h.Matrix, field+".matrix", &p.report)
		set.claimSerial(h.Serial, field, &p.report)
		if h.Central {
			set.claimPeripherals(cfg.Peripherals, &p.report)
		}
	}
}
