package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/hardware"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

func renderMatrix(u *layout.Unified) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("#![allow(dead_code)]\n\n")
	fmt.Fprintf(&b, "pub(crate) const KEYBOARD_NAME: &str = %s;\n", strconv.Quote(u.Name))
	fmt.Fprintf(&b, "pub(crate) const CHIP: &str = %s;\n", strconv.Quote(u.Chip))
	fmt.Fprintf(&b, "pub(crate) const ROW: usize = %d;\n", u.Rows)
	fmt.Fprintf(&b, "pub(crate) const COL: usize = %d;\n", u.Cols)

	hw := u.Hardware
	if !u.Split() {
		if hw != nil {
			b.WriteString("\n")
			writeMatrixPins(&b, "", hw.Matrix)
		}
	} else {
		conn := ""
		if hw != nil && hw.Split != nil {
			conn = string(hw.Split.Connection)
		}
		fmt.Fprintf(&b, "pub(crate) const CONNECTION: &str = %s;\n", strconv.Quote(conn))
		fmt.Fprintf(&b, "pub(crate) const NUM_HALVES: usize = %d;\n", len(u.Halves))
		for _, h := range u.Halves {
			writeHalf(&b, h)
		}
	}

	if hw != nil {
		writePeripherals(&b, hw.Peripherals)
	}
	return b.String()
}

func writeHalf(b *strings.Builder, h layout.Half) {
	const ind = "    "
	fmt.Fprintf(b, "\npub(crate) mod %s {\n", h.Name)
	fmt.Fprintf(b, "%spub(crate) const CENTRAL: bool = %t;\n", ind, h.Central)
	fmt.Fprintf(b, "%spub(crate) const ROW_OFFSET: usize = %d;\n", ind, h.Range.RowStart)
	fmt.Fprintf(b, "%spub(crate) const COL_OFFSET: usize = %d;\n", ind, h.Range.ColStart)
	fmt.Fprintf(b, "%spub(crate) const ROW: usize = %d;\n", ind, h.Range.RowEnd-h.Range.RowStart)
	fmt.Fprintf(b, "%spub(crate) const COL: usize = %d;\n", ind, h.Range.ColEnd-h.Range.ColStart)
	writeMatrixPins(b, ind, h.Hardware.Matrix)

	links := make([]string, len(h.Hardware.Serial))
	for i, s := range h.Hardware.Serial {
		links[i] = fmt.Sprintf("(%s, %s, %s)", strconv.Quote(s.Instance), strconv.Quote(s.TxPin), strconv.Quote(s.RxPin))
	}
	fmt.Fprintf(b, "%s/// (instance, tx, rx) of every serial link.\n", ind)
	fmt.Fprintf(b, "%spub(crate) const SERIAL: [(&str, &str, &str); %d] = [%s];\n", ind, len(links), strings.Join(links, ", "))
	b.WriteString("}\n")
}

func writeMatrixPins(b *strings.Builder, ind string, m hardware.Matrix) {
	if m.Type == hardware.MatrixDirectPin {
		rows, cols := m.Dims()
		fmt.Fprintf(b, "%spub(crate) const DIRECT_PIN: bool = true;\n", ind)
		fmt.Fprintf(b, "%s/// \"_\" marks an unpopulated position.\n", ind)
		fmt.Fprintf(b, "%spub(crate) const DIRECT_PINS: [[&str; %d]; %d] = [\n", ind, cols, rows)
		for _, row := range m.DirectPins {
			fmt.Fprintf(b, "%s    [%s],\n", ind, quoteAll(row))
		}
		fmt.Fprintf(b, "%s];\n", ind)
		return
	}
	fmt.Fprintf(b, "%spub(crate) const DIRECT_PIN: bool = false;\n", ind)
	fmt.Fprintf(b, "%spub(crate) const ROW2COL: bool = %t;\n", ind, m.Row2Col)
	fmt.Fprintf(b, "%spub(crate) const INPUT_PINS: [&str; %d] = [%s];\n", ind, len(m.InputPins), quoteAll(m.InputPins))
	fmt.Fprintf(b, "%spub(crate) const OUTPUT_PINS: [&str; %d] = [%s];\n", ind, len(m.OutputPins), quoteAll(m.OutputPins))
}

func writePeripherals(b *strings.Builder, p hardware.Peripherals) {
	b.WriteString("\n")
	for _, name := range []string{"capslock", "scrolllock", "numslock"} {
		value := "None"
		for _, ind := range p.Indicators {
			if ind.Name == name {
				value = fmt.Sprintf("Some((%s, %t))", strconv.Quote(ind.Pin), ind.LowActive)
			}
		}
		fmt.Fprintf(b, "/// (pin, low_active) of the %s indicator.\n", name)
		fmt.Fprintf(b, "pub(crate) const %s_LED: Option<(&str, bool)> = %s;\n", strings.ToUpper(name), value)
	}

	encoders := make([]string, len(p.Encoders))
	for i, e := range p.Encoders {
		encoders[i] = fmt.Sprintf("(%s, %s)", strconv.Quote(e.PinA), strconv.Quote(e.PinB))
	}
	fmt.Fprintf(b, "pub(crate) const ENCODERS: [(&str, &str); %d] = [%s];\n", len(encoders), strings.Join(encoders, ", "))

	if p.RGB != nil {
		fmt.Fprintf(b, "pub(crate) const RGB: Option<(&str, usize)> = Some((%s, %d));\n", strconv.Quote(p.RGB.DataPin), p.RGB.NumLEDs)
	} else {
		b.WriteString("pub(crate) const RGB: Option<(&str, usize)> = None;\n")
	}
	if p.Display != nil {
		fmt.Fprintf(b, "pub(crate) const DISPLAY: Option<(&str, &str, &str)> = Some((%s, %s, %s));\n",
			strconv.Quote(p.Display.Driver), strconv.Quote(p.Display.SDAPin), strconv.Quote(p.Display.SCLPin))
	} else {
		b.WriteString("pub(crate) const DISPLAY: Option<(&str, &str, &str)> = None;\n")
	}
}

func quoteAll(pins []string) string {
	q := make([]string, len(pins))
	for i, p := range pins {
		q[i] = strconv.Quote(p)
	}
	return strings.Join(q, ", ")
}

// rustFloat formats f as an f32 literal, always with a decimal point.
func rustFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
