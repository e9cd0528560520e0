package keycode

import "github.com/Aman-CERP/rmkgen/internal/layout"

// modifierFuncs maps modifier wrapper names to the modifiers they add.
var modifierFuncs = map[string]layout.Modifier{
	"LCTL": layout.ModLCtrl, "C": layout.ModLCtrl,
	"LSFT": layout.ModLShift, "S": layout.ModLShift,
	"LALT": layout.ModLAlt, "A": layout.ModLAlt, "LOPT": layout.ModLAlt,
	"LGUI": layout.ModLGui, "G": layout.ModLGui, "LCMD": layout.ModLGui, "LWIN": layout.ModLGui,
	"RCTL": layout.ModRCtrl,
	"RSFT": layout.ModRShift,
	"RALT": layout.ModRAlt, "ROPT": layout.ModRAlt, "ALGR": layout.ModRAlt,
	"RGUI": layout.ModRGui, "RCMD": layout.ModRGui, "RWIN": layout.ModRGui,

	"LCS": layout.ModLCtrl | layout.ModLShift, "C_S": layout.ModLCtrl | layout.ModLShift,
	"LCA":  layout.ModLCtrl | layout.ModLAlt,
	"LCG":  layout.ModLCtrl | layout.ModLGui,
	"LSA":  layout.ModLShift | layout.ModLAlt,
	"LSG":  layout.ModLShift | layout.ModLGui, "SGUI": layout.ModLShift | layout.ModLGui,
	"LAG":  layout.ModLAlt | layout.ModLGui,
	"LCSG": layout.ModLCtrl | layout.ModLShift | layout.ModLGui,
	"LCAG": layout.ModLCtrl | layout.ModLAlt | layout.ModLGui,
	"LSAG": layout.ModLShift | layout.ModLAlt | layout.ModLGui,
	"MEH":  layout.ModLCtrl | layout.ModLShift | layout.ModLAlt,
	"HYPR": layout.ModLCtrl | layout.ModLShift | layout.ModLAlt | layout.ModLGui,

	"RCS":  layout.ModRCtrl | layout.ModRShift,
	"RCA":  layout.ModRCtrl | layout.ModRAlt,
	"RCG":  layout.ModRCtrl | layout.ModRGui,
	"RSA":  layout.ModRShift | layout.ModRAlt,
	"RSG":  layout.ModRShift | layout.ModRGui,
	"RAG":  layout.ModRAlt | layout.ModRGui,
	"RCAG": layout.ModRCtrl | layout.ModRAlt | layout.ModRGui,
	"RMEH": layout.ModRCtrl | layout.ModRShift | layout.ModRAlt,
}

// layerFuncs maps single-argument layer directives to their action.
var layerFuncs = map[string]layout.LayerAction{
	"MO":  layout.LayerMomentary,
	"TG":  layout.LayerToggle,
	"OSL": layout.LayerOneShot,
	"TO":  layout.LayerTo,
	"DF":  layout.LayerDefault,
}

// MaxMacro is the highest macro and user keycode index RMK provides.
const MaxMacro = 31
