package keycode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// Entry is one row of the plain keycode table.
type Entry struct {
	// Token is the keymap token, e.g. "KC_ENT".
	Token string
	// Keycode is what the token resolves to.
	Keycode layout.Keycode
}

// plainNames maps RMK keycode identifiers to their keymap aliases.
// The first alias is the canonical QMK name.
var plainNames = []struct {
	code    string
	aliases []string
}{
	{"Enter", []string{"KC_ENTER", "KC_ENT"}},
	{"Escape", []string{"KC_ESCAPE", "KC_ESC"}},
	{"Backspace", []string{"KC_BACKSPACE", "KC_BSPC", "KC_BSPACE"}},
	{"Tab", []string{"KC_TAB"}},
	{"Space", []string{"KC_SPACE", "KC_SPC"}},
	{"Minus", []string{"KC_MINUS", "KC_MINS"}},
	{"Equal", []string{"KC_EQUAL", "KC_EQL"}},
	{"LeftBracket", []string{"KC_LEFT_BRACKET", "KC_LBRC", "KC_LBRACKET"}},
	{"RightBracket", []string{"KC_RIGHT_BRACKET", "KC_RBRC", "KC_RBRACKET"}},
	{"Backslash", []string{"KC_BACKSLASH", "KC_BSLS", "KC_BSLASH"}},
	{"NonusHash", []string{"KC_NONUS_HASH", "KC_NUHS"}},
	{"Semicolon", []string{"KC_SEMICOLON", "KC_SCLN", "KC_SCOLON"}},
	{"Quote", []string{"KC_QUOTE", "KC_QUOT"}},
	{"Grave", []string{"KC_GRAVE", "KC_GRV"}},
	{"Comma", []string{"KC_COMMA", "KC_COMM"}},
	{"Dot", []string{"KC_DOT"}},
	{"Slash", []string{"KC_SLASH", "KC_SLSH"}},
	{"CapsLock", []string{"KC_CAPS_LOCK", "KC_CAPS", "KC_CAPSLOCK"}},
	{"PrintScreen", []string{"KC_PRINT_SCREEN", "KC_PSCR", "KC_PSCREEN"}},
	{"ScrollLock", []string{"KC_SCROLL_LOCK", "KC_SCRL", "KC_SLCK", "KC_SCROLLLOCK"}},
	{"Pause", []string{"KC_PAUSE", "KC_PAUS", "KC_BRK"}},
	{"Insert", []string{"KC_INSERT", "KC_INS"}},
	{"Home", []string{"KC_HOME"}},
	{"PageUp", []string{"KC_PAGE_UP", "KC_PGUP"}},
	{"Delete", []string{"KC_DELETE", "KC_DEL"}},
	{"End", []string{"KC_END"}},
	{"PageDown", []string{"KC_PAGE_DOWN", "KC_PGDN", "KC_PGDOWN"}},
	{"Right", []string{"KC_RIGHT", "KC_RGHT"}},
	{"Left", []string{"KC_LEFT"}},
	{"Down", []string{"KC_DOWN"}},
	{"Up", []string{"KC_UP"}},
	{"NumLock", []string{"KC_NUM_LOCK", "KC_NUM", "KC_NLCK", "KC_NUMLOCK"}},
	{"KpSlash", []string{"KC_KP_SLASH", "KC_PSLS"}},
	{"KpAsterisk", []string{"KC_KP_ASTERISK", "KC_PAST"}},
	{"KpMinus", []string{"KC_KP_MINUS", "KC_PMNS"}},
	{"KpPlus", []string{"KC_KP_PLUS", "KC_PPLS"}},
	{"KpEnter", []string{"KC_KP_ENTER", "KC_PENT"}},
	{"KpDot", []string{"KC_KP_DOT", "KC_PDOT"}},
	{"KpEqual", []string{"KC_KP_EQUAL", "KC_PEQL"}},
	{"KpComma", []string{"KC_KP_COMMA", "KC_PCMM"}},
	{"NonusBackslash", []string{"KC_NONUS_BACKSLASH", "KC_NUBS"}},
	{"Application", []string{"KC_APPLICATION", "KC_APP"}},
	{"KbPower", []string{"KC_KB_POWER"}},
	{"Execute", []string{"KC_EXECUTE", "KC_EXEC"}},
	{"Help", []string{"KC_HELP"}},
	{"Menu", []string{"KC_MENU"}},
	{"Select", []string{"KC_SELECT", "KC_SLCT"}},
	{"Stop", []string{"KC_STOP"}},
	{"Again", []string{"KC_AGAIN", "KC_AGIN"}},
	{"Undo", []string{"KC_UNDO"}},
	{"Cut", []string{"KC_CUT"}},
	{"Copy", []string{"KC_COPY"}},
	{"Paste", []string{"KC_PASTE", "KC_PSTE"}},
	{"Find", []string{"KC_FIND"}},
	{"International1", []string{"KC_INTERNATIONAL_1", "KC_INT1", "KC_RO"}},
	{"International2", []string{"KC_INTERNATIONAL_2", "KC_INT2", "KC_KANA"}},
	{"International3", []string{"KC_INTERNATIONAL_3", "KC_INT3", "KC_JYEN"}},
	{"International4", []string{"KC_INTERNATIONAL_4", "KC_INT4", "KC_HENK"}},
	{"International5", []string{"KC_INTERNATIONAL_5", "KC_INT5", "KC_MHEN"}},
	{"Language1", []string{"KC_LANGUAGE_1", "KC_LNG1", "KC_LANG1"}},
	{"Language2", []string{"KC_LANGUAGE_2", "KC_LNG2", "KC_LANG2"}},

	{"LCtrl", []string{"KC_LEFT_CTRL", "KC_LCTL", "KC_LCTRL"}},
	{"LShift", []string{"KC_LEFT_SHIFT", "KC_LSFT", "KC_LSHIFT"}},
	{"LAlt", []string{"KC_LEFT_ALT", "KC_LALT", "KC_LOPT"}},
	{"LGui", []string{"KC_LEFT_GUI", "KC_LGUI", "KC_LCMD", "KC_LWIN"}},
	{"RCtrl", []string{"KC_RIGHT_CTRL", "KC_RCTL", "KC_RCTRL"}},
	{"RShift", []string{"KC_RIGHT_SHIFT", "KC_RSFT", "KC_RSHIFT"}},
	{"RAlt", []string{"KC_RIGHT_ALT", "KC_RALT", "KC_ROPT", "KC_ALGR"}},
	{"RGui", []string{"KC_RIGHT_GUI", "KC_RGUI", "KC_RCMD", "KC_RWIN"}},

	{"SystemPower", []string{"KC_SYSTEM_POWER", "KC_PWR"}},
	{"SystemSleep", []string{"KC_SYSTEM_SLEEP", "KC_SLEP"}},
	{"SystemWake", []string{"KC_SYSTEM_WAKE", "KC_WAKE"}},
	{"AudioMute", []string{"KC_AUDIO_MUTE", "KC_MUTE"}},
	{"AudioVolUp", []string{"KC_AUDIO_VOL_UP", "KC_VOLU"}},
	{"AudioVolDown", []string{"KC_AUDIO_VOL_DOWN", "KC_VOLD"}},
	{"MediaNextTrack", []string{"KC_MEDIA_NEXT_TRACK", "KC_MNXT"}},
	{"MediaPrevTrack", []string{"KC_MEDIA_PREV_TRACK", "KC_MPRV"}},
	{"MediaStop", []string{"KC_MEDIA_STOP", "KC_MSTP"}},
	{"MediaPlayPause", []string{"KC_MEDIA_PLAY_PAUSE", "KC_MPLY"}},
	{"MediaSelect", []string{"KC_MEDIA_SELECT", "KC_MSEL"}},
	{"MediaEject", []string{"KC_MEDIA_EJECT", "KC_EJCT"}},
	{"MediaFastForward", []string{"KC_MEDIA_FAST_FORWARD", "KC_MFFD"}},
	{"MediaRewind", []string{"KC_MEDIA_REWIND", "KC_MRWD"}},
	{"Mail", []string{"KC_MAIL"}},
	{"Calculator", []string{"KC_CALCULATOR", "KC_CALC"}},
	{"MyComputer", []string{"KC_MY_COMPUTER", "KC_MYCM"}},
	{"WwwSearch", []string{"KC_WWW_SEARCH", "KC_WSCH"}},
	{"WwwHome", []string{"KC_WWW_HOME", "KC_WHOM"}},
	{"WwwBack", []string{"KC_WWW_BACK", "KC_WBAK"}},
	{"WwwForward", []string{"KC_WWW_FORWARD", "KC_WFWD"}},
	{"WwwStop", []string{"KC_WWW_STOP", "KC_WSTP"}},
	{"WwwRefresh", []string{"KC_WWW_REFRESH", "KC_WREF"}},
	{"WwwFavorites", []string{"KC_WWW_FAVORITES", "KC_WFAV"}},
	{"BrightnessUp", []string{"KC_BRIGHTNESS_UP", "KC_BRIU"}},
	{"BrightnessDown", []string{"KC_BRIGHTNESS_DOWN", "KC_BRID"}},

	{"MouseUp", []string{"KC_MS_UP", "KC_MS_U"}},
	{"MouseDown", []string{"KC_MS_DOWN", "KC_MS_D"}},
	{"MouseLeft", []string{"KC_MS_LEFT", "KC_MS_L"}},
	{"MouseRight", []string{"KC_MS_RIGHT", "KC_MS_R"}},
	{"MouseWheelUp", []string{"KC_MS_WH_UP", "KC_WH_U"}},
	{"MouseWheelDown", []string{"KC_MS_WH_DOWN", "KC_WH_D"}},
	{"MouseWheelLeft", []string{"KC_MS_WH_LEFT", "KC_WH_L"}},
	{"MouseWheelRight", []string{"KC_MS_WH_RIGHT", "KC_WH_R"}},
	{"MouseAccel0", []string{"KC_MS_ACCEL0", "KC_ACL0"}},
	{"MouseAccel1", []string{"KC_MS_ACCEL1", "KC_ACL1"}},
	{"MouseAccel2", []string{"KC_MS_ACCEL2", "KC_ACL2"}},

	{"Bootloader", []string{"QK_BOOTLOADER", "QK_BOOT", "RESET"}},
	{"Reboot", []string{"QK_REBOOT", "QK_RBT"}},
	{"DebugToggle", []string{"QK_DEBUG_TOGGLE", "DB_TOGG"}},
	{"ClearEeprom", []string{"QK_CLEAR_EEPROM", "EE_CLR"}},
	{"GraveEscape", []string{"QK_GRAVE_ESCAPE", "QK_GESC", "KC_GESC"}},
	{"CapsWordToggle", []string{"QK_CAPS_WORD_TOGGLE", "CW_TOGG"}},
	{"RepeatKey", []string{"QK_REPEAT_KEY", "QK_REP"}},
}

// shiftedNames maps shifted-symbol aliases to the unshifted base keycode.
var shiftedNames = []struct {
	token string
	base  string
}{
	{"KC_TILD", "Grave"},
	{"KC_EXLM", "Kc1"},
	{"KC_AT", "Kc2"},
	{"KC_HASH", "Kc3"},
	{"KC_DLR", "Kc4"},
	{"KC_PERC", "Kc5"},
	{"KC_CIRC", "Kc6"},
	{"KC_AMPR", "Kc7"},
	{"KC_ASTR", "Kc8"},
	{"KC_LPRN", "Kc9"},
	{"KC_RPRN", "Kc0"},
	{"KC_UNDS", "Minus"},
	{"KC_PLUS", "Equal"},
	{"KC_LCBR", "LeftBracket"},
	{"KC_RCBR", "RightBracket"},
	{"KC_PIPE", "Backslash"},
	{"KC_COLN", "Semicolon"},
	{"KC_DQUO", "Quote"},
	{"KC_DQT", "Quote"},
	{"KC_LABK", "Comma"},
	{"KC_LT", "Comma"},
	{"KC_RABK", "Dot"},
	{"KC_GT", "Dot"},
	{"KC_QUES", "Slash"},
}

var (
	noTokens          = []string{"KC_NO", "XXXXXXX"}
	transparentTokens = []string{"KC_TRANSPARENT", "KC_TRNS", "_______"}
)

// table is the plain keycode table, built once at init.
var table = buildTable()

func buildTable() map[string]layout.Keycode {
	t := make(map[string]layout.Keycode, 512)
	for c := 'A'; c <= 'Z'; c++ {
		t["KC_"+string(c)] = layout.Plain(string(c))
	}
	for d := 0; d <= 9; d++ {
		t[fmt.Sprintf("KC_%d", d)] = layout.Plain(fmt.Sprintf("Kc%d", d))
		t[fmt.Sprintf("KC_KP_%d", d)] = layout.Plain(fmt.Sprintf("Kp%d", d))
		t[fmt.Sprintf("KC_P%d", d)] = layout.Plain(fmt.Sprintf("Kp%d", d))
	}
	for f := 1; f <= 24; f++ {
		t[fmt.Sprintf("KC_F%d", f)] = layout.Plain(fmt.Sprintf("F%d", f))
	}
	for b := 1; b <= 8; b++ {
		t[fmt.Sprintf("KC_MS_BTN%d", b)] = layout.Plain(fmt.Sprintf("MouseBtn%d", b))
		t[fmt.Sprintf("KC_BTN%d", b)] = layout.Plain(fmt.Sprintf("MouseBtn%d", b))
	}
	for _, p := range plainNames {
		for _, alias := range p.aliases {
			t[alias] = layout.Plain(p.code)
		}
	}
	for _, s := range shiftedNames {
		t[s.token] = layout.Modified(s.base, layout.ModLShift)
	}
	for _, tok := range noTokens {
		t[tok] = layout.None()
	}
	for _, tok := range transparentTokens {
		t[tok] = layout.Transparent()
	}
	return t
}

// Lookup returns the table entry for token.
func Lookup(token string) (layout.Keycode, bool) {
	kc, ok := table[token]
	return kc, ok
}

// Table returns every plain table entry whose token starts with prefix,
// sorted by token. An empty prefix returns the whole table.
func Table(prefix string) []Entry {
	prefix = strings.ToUpper(prefix)
	out := make([]Entry, 0, len(table))
	for tok, kc := range table {
		if strings.HasPrefix(tok, prefix) {
			out = append(out, Entry{Token: tok, Keycode: kc})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}
