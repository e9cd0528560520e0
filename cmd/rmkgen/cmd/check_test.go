package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCmd_Summary(t *testing.T) {
	// Given: pad inputs
	dir := workspace(t)

	// When: checking
	stdout, _, err := run(t, "check", "--no-color")

	// Then: the summary names the board and nothing is written
	require.NoError(t, err)
	assert.Contains(t, stdout, "Test Pad")
	assert.Contains(t, stdout, "rp2040")
	assert.Contains(t, stdout, "src/keymap.rs")
	assert.NoDirExists(t, filepath.Join(dir, "Test_Pad"))
}

func TestCheckCmd_JSON(t *testing.T) {
	workspace(t)

	stdout, _, err := run(t, "check", "--json")

	require.NoError(t, err)
	var res checkJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, checkJSON{
		Keyboard:  "Test Pad",
		Chip:      "rp2040",
		Variant:   "rp2040",
		Rows:      2,
		Cols:      2,
		Layers:    2,
		Keys:      4,
		Fragments: []string{"src/keymap.rs", "src/layout.rs", "src/matrix.rs"},
	}, res)
}

func TestCheckCmd_ReportsProblems(t *testing.T) {
	// Given: a keymap whose matrix disagrees with keyboard.toml
	dir := workspace(t)
	bad := `{"matrix": {"rows": 3, "cols": 2},
  "layouts": {"keymap": [["0,0", "0,1"], ["1,0", "1,1"]]},
  "layers": [["KC_A", "KC_B", "KC_C", "KC_D"]]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vial.json"), []byte(bad), 0o644))

	// When: checking
	_, stderr, err := run(t, "check", "--no-color", "-v", "vial.json")

	// Then: the problem is listed with its location
	require.Error(t, err)
	assert.Contains(t, stderr, "problem")
	assert.Contains(t, stderr, "ERR_")
}
