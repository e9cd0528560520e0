package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rmkgen/configs"
	"github.com/Aman-CERP/rmkgen/internal/config"
)

func TestConfigInit_Project(t *testing.T) {
	// Given: a working directory without config
	dir := workspace(t)

	// When: running config init
	stdout, _, err := run(t, "config", "init")

	// Then: .rmkgen.yaml holds the template
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	data, err := os.ReadFile(filepath.Join(dir, ".rmkgen.yaml"))
	require.NoError(t, err)
	assert.Equal(t, configs.ConfigTemplate, string(data))
}

func TestConfigInit_ExistingNeedsForce(t *testing.T) {
	// Given: an existing project config
	dir := workspace(t)
	path := filepath.Join(dir, ".rmkgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	// When: running config init without --force
	stdout, _, err := run(t, "config", "init")

	// Then: the file is untouched
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))

	// When: running with --force
	stdout, _, err = run(t, "config", "init", "--force")

	// Then: the old file is backed up and replaced
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backup:")
	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(old))
}

func TestConfigInit_User(t *testing.T) {
	workspace(t)

	_, _, err := run(t, "config", "init", "--user")

	require.NoError(t, err)
	assert.FileExists(t, config.GetUserConfigPath())
}

func TestConfigShow_MergedJSON(t *testing.T) {
	// Given: a project config choosing preserve
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rmkgen.yaml"), []byte("output:\n  policy: preserve\n"), 0o644))

	// When: showing the merged config as JSON
	stdout, _, err := run(t, "config", "show", "--json")

	// Then: the project value wins over the default
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "preserve", cfg.Output.Policy)
	assert.Equal(t, "offsets", cfg.Reconcile.SplitPolicy)
}

func TestConfigShow_Sources(t *testing.T) {
	workspace(t)

	stdout, _, err := run(t, "config", "show", "--source", "defaults")
	require.NoError(t, err)
	assert.Contains(t, stdout, "defaults (built-in)")
	assert.Contains(t, stdout, "policy: refuse")

	stdout, _, err = run(t, "config", "show", "--source", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No user configuration")

	stdout, _, err = run(t, "config", "show", "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No project configuration")

	_, _, err = run(t, "config", "show", "--source", "elsewhere")
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	dir := workspace(t)

	stdout, _, err := run(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(dir, ".config", "rmkgen", "config.yaml"))
	assert.Contains(t, stdout, "(not found)")
}
