package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Names(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
		short string
		icon  string
	}{
		{StageParse, "Parsing", "Parse", "PARSE"},
		{StageReconcile, "Reconciling", "Reconcile", "RECON"},
		{StageResolve, "Resolving", "Resolve", "RESOLVE"},
		{StageEmit, "Emitting", "Emit", "EMIT"},
		{StageTemplate, "Fetching template", "Template", "TMPL"},
		{StageMaterialize, "Writing project", "Write", "WRITE"},
		{StageComplete, "Complete", "Done", "DONE"},
		{Stage(42), "Unknown", "?", "???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.stage.String())
			assert.Equal(t, tt.short, tt.stage.Short())
			assert.Equal(t, tt.icon, tt.stage.Icon())
		})
	}
}

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestNewConfig_AppliesOptions(t *testing.T) {
	buf := &bytes.Buffer{}

	cfg := NewConfig(buf, WithForcePlain(true), WithNoColor(true), WithTitle("keyboard.toml"))

	assert.Same(t, buf, cfg.Output)
	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "keyboard.toml", cfg.Title)
}

func TestNewRenderer_NonTTYIsPlain(t *testing.T) {
	// Given: output that is not a terminal
	cfg := NewConfig(&bytes.Buffer{})

	// When: creating a renderer
	r := NewRenderer(cfg)

	// Then: the plain renderer is chosen
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestDetectCI(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")

	assert.True(t, DetectCI())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}
