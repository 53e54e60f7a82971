package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_PlainTextPassesThrough(t *testing.T) {
	out, err := RenderTemplate("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderTemplate_InterpolatesState(t *testing.T) {
	out, err := RenderTemplate("emit {{.CompletionMarker}} when done", map[string]any{
		"CompletionMarker": "REQUIREMENTS_COMPLETE",
	})
	require.NoError(t, err)
	assert.Equal(t, "emit REQUIREMENTS_COMPLETE when done", out)
}

func TestRenderTemplate_InvalidTemplate(t *testing.T) {
	_, err := RenderTemplate("broken {{.Unterminated", nil)
	assert.Error(t, err)
}
