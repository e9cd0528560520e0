package layout

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a resolved keycode.
type Kind int

const (
	// KindPlain is a single firmware keycode.
	KindPlain Kind = iota
	// KindModified is a base keycode sent with a modifier set.
	KindModified
	// KindLayer changes the active layer.
	KindLayer
	// KindMacro triggers a macro defined outside the keymap.
	KindMacro
	// KindTransparent falls through to the next active layer.
	KindTransparent
	// KindNone does nothing.
	KindNone
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindModified:
		return "modified"
	case KindLayer:
		return "layer"
	case KindMacro:
		return "macro"
	case KindTransparent:
		return "transparent"
	case KindNone:
		return "none"
	default:
		return "unknown"
	}
}

// LayerAction is the kind of layer switch.
type LayerAction int

const (
	// LayerMomentary activates the layer while held.
	LayerMomentary LayerAction = iota
	// LayerToggle toggles the layer on or off.
	LayerToggle
	// LayerOneShot activates the layer for the next key press.
	LayerOneShot
	// LayerTo activates the layer and deactivates all others except the default.
	LayerTo
	// LayerDefault sets the default layer.
	LayerDefault
	// LayerTap activates the layer while held and sends Tap when tapped.
	LayerTap
)

// String returns the directive name used in keymap documents.
func (a LayerAction) String() string {
	switch a {
	case LayerMomentary:
		return "MO"
	case LayerToggle:
		return "TG"
	case LayerOneShot:
		return "OSL"
	case LayerTo:
		return "TO"
	case LayerDefault:
		return "DF"
	case LayerTap:
		return "LT"
	default:
		return "?"
	}
}

// Modifier is a bit set of keyboard modifiers.
type Modifier uint8

const (
	ModLCtrl Modifier = 1 << iota
	ModLShift
	ModLAlt
	ModLGui
	ModRCtrl
	ModRShift
	ModRAlt
	ModRGui
)

const (
	modLeft  = ModLCtrl | ModLShift | ModLAlt | ModLGui
	modRight = ModRCtrl | ModRShift | ModRAlt | ModRGui
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModLCtrl, "LCtrl"},
	{ModLShift, "LShift"},
	{ModLAlt, "LAlt"},
	{ModLGui, "LGui"},
	{ModRCtrl, "RCtrl"},
	{ModRShift, "RShift"},
	{ModRAlt, "RAlt"},
	{ModRGui, "RGui"},
}

// String lists the set modifiers joined by "|", in fixed order.
func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MixesSides reports whether the set contains both left and right modifiers.
func (m Modifier) MixesSides() bool {
	return m&modLeft != 0 && m&modRight != 0
}

// Right reports whether the set only uses right-hand modifiers.
func (m Modifier) Right() bool {
	return m != 0 && m&modLeft == 0
}

// Ctrl reports whether either control modifier is set.
func (m Modifier) Ctrl() bool { return m&(ModLCtrl|ModRCtrl) != 0 }

// Shift reports whether either shift modifier is set.
func (m Modifier) Shift() bool { return m&(ModLShift|ModRShift) != 0 }

// Alt reports whether either alt modifier is set.
func (m Modifier) Alt() bool { return m&(ModLAlt|ModRAlt) != 0 }

// Gui reports whether either gui modifier is set.
func (m Modifier) Gui() bool { return m&(ModLGui|ModRGui) != 0 }

// Keycode is a resolved keymap token.
//
// Code holds the firmware keycode identifier for plain and modified
// keycodes and for the tap half of a layer-tap. Layer and Action are set
// for KindLayer; Macro is set for KindMacro.
type Keycode struct {
	Kind   Kind
	Code   string
	Mods   Modifier
	Layer  int
	Action LayerAction
	Macro  int
}

// Plain returns a plain keycode.
func Plain(code string) Keycode {
	return Keycode{Kind: KindPlain, Code: code}
}

// Modified returns code sent with mods.
func Modified(code string, mods Modifier) Keycode {
	return Keycode{Kind: KindModified, Code: code, Mods: mods}
}

// LayerSwitch returns a layer directive. tap is only used by LayerTap.
func LayerSwitch(action LayerAction, layer int, tap string) Keycode {
	return Keycode{Kind: KindLayer, Action: action, Layer: layer, Code: tap}
}

// MacroRef returns a macro reference.
func MacroRef(id int) Keycode {
	return Keycode{Kind: KindMacro, Macro: id}
}

// Transparent returns the transparent keycode.
func Transparent() Keycode {
	return Keycode{Kind: KindTransparent}
}

// None returns the no-op keycode.
func None() Keycode {
	return Keycode{Kind: KindNone}
}

// IsNoOp reports whether the keycode sends nothing on its own layer.
func (k Keycode) IsNoOp() bool {
	return k.Kind == KindTransparent || k.Kind == KindNone
}

// String returns a compact, stable description used in logs and tests.
func (k Keycode) String() string {
	switch k.Kind {
	case KindPlain:
		return k.Code
	case KindModified:
		return fmt.Sprintf("%s+%s", k.Mods, k.Code)
	case KindLayer:
		if k.Action == LayerTap {
			return fmt.Sprintf("LT(%d,%s)", k.Layer, k.Code)
		}
		return fmt.Sprintf("%s(%d)", k.Action, k.Layer)
	case KindMacro:
		return fmt.Sprintf("Macro%d", k.Macro)
	case KindTransparent:
		return "Transparent"
	case KindNone:
		return "No"
	default:
		return "?"
	}
}
