package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderVerbatim(t *testing.T) {
	styles := NoColorStyles()

	for _, s := range []string{
		styles.Header.Render("x"),
		styles.Success.Render("x"),
		styles.Warning.Render("x"),
		styles.Error.Render("x"),
		styles.Dim.Render("x"),
		styles.Active.Render("x"),
		styles.Label.Render("x"),
	} {
		assert.Equal(t, "x", s)
	}
}

func TestDefaultStyles_HeaderIsBold(t *testing.T) {
	assert.True(t, DefaultStyles().Header.GetBold())
	assert.True(t, DefaultStyles().Error.GetBold())
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "x", GetStyles(true).Header.Render("x"))
	assert.True(t, GetStyles(false).Header.GetBold())
}
