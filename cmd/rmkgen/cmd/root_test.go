package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const padKeyboard = `[keyboard]
name = "Test Pad"
chip = "rp2040"

[matrix]
input_pins = ["PIN_6", "PIN_7"]
output_pins = ["PIN_19", "PIN_20"]
`

const padKeymap = `{
  "name": "Test Pad",
  "matrix": {"rows": 2, "cols": 2},
  "layouts": {"keymap": [["0,0", "0,1"], ["1,0", "1,1"]]},
  "layers": [
    ["KC_A", "KC_B", "LSFT(KC_C)", "MO(1)"],
    ["KC_TRNS", "KC_1", "LT(0, KC_SPC)", "_______"]
  ]
}
`

// workspace creates an isolated working directory holding the pad inputs
// and changes into it.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("HOME", dir)
	for _, k := range []string{"RMKGEN_TEMPLATE", "RMKGEN_POLICY", "RMKGEN_SPLIT_POLICY", "RMKGEN_WORKERS", "RMKGEN_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keyboard.toml"), []byte(padKeyboard), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vial.json"), []byte(padKeymap), 0o644))
	t.Chdir(dir)
	return dir
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_ShowsHelp(t *testing.T) {
	// When: executing with --help
	stdout, _, err := run(t, "--help")

	// Then: usage and every subcommand are listed
	require.NoError(t, err)
	assert.Contains(t, stdout, "rmkgen")
	for _, sub := range []string{"generate", "check", "keycodes", "config", "version"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	stdout, _, err := run(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "rmkgen version")
}

func TestRootCmd_InvalidProjectConfig(t *testing.T) {
	// Given: a project config with an unknown policy
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rmkgen.yaml"), []byte("output:\n  policy: sometimes\n"), 0o644))

	// When: checking
	_, _, err := run(t, "check", "--plain")

	// Then: the configuration error surfaces
	require.Error(t, err)
}

func TestReportedError_Unwraps(t *testing.T) {
	inner := assert.AnError
	err := reportedError{inner}

	assert.ErrorIs(t, err, inner)
}
