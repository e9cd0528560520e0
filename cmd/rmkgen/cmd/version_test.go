package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rmkgen/pkg/version"
)

// stampVersion sets the build variables for one test.
func stampVersion(t *testing.T, v, commit string) {
	t.Helper()
	oldV, oldC := version.Version, version.Commit
	version.Version, version.Commit = v, commit
	t.Cleanup(func() { version.Version, version.Commit = oldV, oldC })
}

func TestVersionCmd_Outputs(t *testing.T) {
	stampVersion(t, "1.4.0", "abc1234")

	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rmkgen 1.4.0 (commit: abc1234, built: ")

	stdout, _, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", stdout)
}

func TestVersionCmd_JSON(t *testing.T) {
	// Given: a stamped build
	stampVersion(t, "1.4.0", "abc1234")

	// When: printing JSON
	stdout, _, err := run(t, "version", "--json")

	// Then: the build information decodes into BuildInfo
	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.OS)
}

func TestVersionCmd_RejectsConflictingFlags(t *testing.T) {
	_, _, err := run(t, "version", "--json", "--short")

	assert.Error(t, err)
}

func TestVersionCmd_RejectsArguments(t *testing.T) {
	_, _, err := run(t, "version", "extra")

	assert.Error(t, err)
}
