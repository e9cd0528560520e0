package hardware

import (
	"sort"
	"strings"
)

// boardChips maps known board names to the chip they carry.
// Board names are matched case-sensitively, as they appear in keyboard.toml.
var boardChips = map[string]string{
	// Nordic boards
	"nrfmicro":     "nrf52840",
	"bluemicro840": "nrf52840",
	"puchi_ble":    "nrf52840",
	"nice!nano":    "nrf52840",
	"nice!nano_v2": "nrf52840",
	"XIAO BLE":     "nrf52840",

	// RP2040 boards
	"pi_pico": "rp2040",
}

// ChipForBoard returns the chip used by a known board.
func ChipForBoard(board string) (string, bool) {
	chip, ok := boardChips[board]
	return chip, ok
}

// KnownBoards returns every supported board name, sorted.
func KnownBoards() []string {
	boards := make([]string, 0, len(boardChips))
	for b := range boardChips {
		boards = append(boards, b)
	}
	sort.Strings(boards)
	return boards
}

// knownBoardList is used in error suggestions.
func knownBoardList() string {
	return strings.Join(KnownBoards(), ", ")
}
