package synthesis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docflow/artifact"
	"github.com/hupe1980/docflow/core"
)

var _ core.SynthesisProvider = (*DeckBuilder)(nil)

func testManifest() map[string]any {
	return map[string]any{
		"source": "local",
		"tables": []any{
			map[string]any{"name": "revenue_summary", "section": "Revenue Summary", "columns": []any{"metric", "value", "period"}},
			map[string]any{"name": "churn_analysis", "section": "Churn Analysis", "columns": []any{"metric", "value", "period"}},
		},
	}
}

func testMappings() map[string]any {
	return map[string]any{
		"revenue_summary": map[string]any{"metric": "string", "value": "number"},
		"churn_analysis":  map[string]any{"metric": "string", "value": "number"},
	}
}

func TestDeckBuilder_RendersDeckFromManifest(t *testing.T) {
	dir := t.TempDir()
	builder := NewDeckBuilder()

	spec := map[string]any{"title": "Quarterly Business Review", "audience": "executives"}

	result, err := builder.Generate(context.Background(), spec, testManifest(), testMappings(), dir)
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 4, result.SlideCount) // title + two content + summary
	assert.Equal(t, 2, result.InsightCount)
	assert.Equal(t, "passed", result.QAResults["overall_status"])

	_, err = os.Stat(result.OutputPath)
	require.NoError(t, err)

	deck, err := artifact.ReadJSON(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Business Review", deck["title"])

	slides, ok := deck["slides"].([]any)
	require.True(t, ok)
	require.Len(t, slides, 4)

	titleSlide, ok := slides[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "title", titleSlide["type"])
	assert.Equal(t, "executives", titleSlide["audience"])

	content, ok := slides[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "content", content["type"])
	assert.Equal(t, "Revenue Summary", content["title"])
	assert.Equal(t, "revenue_summary", content["table"])
	assert.Contains(t, content, "mappings")
}

func TestDeckBuilder_EmptyManifestStillRendersDeck(t *testing.T) {
	builder := NewDeckBuilder()

	result, err := builder.Generate(context.Background(), map[string]any{"title": "Board Update"}, nil, nil, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, result.SlideCount) // title + overview + summary
	assert.Equal(t, 0, result.InsightCount)

	_, err = os.Stat(result.OutputPath)
	require.NoError(t, err)
}

func TestDeckBuilder_RejectsEmptySpec(t *testing.T) {
	builder := NewDeckBuilder()

	_, err := builder.Generate(context.Background(), nil, testManifest(), testMappings(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement spec")
}

func TestDeckBuilder_RerunOverwrites(t *testing.T) {
	dir := t.TempDir()
	builder := NewDeckBuilder()

	_, err := builder.Generate(context.Background(), map[string]any{"title": "First Draft"}, testManifest(), testMappings(), dir)
	require.NoError(t, err)

	result, err := builder.Generate(context.Background(), map[string]any{"title": "Final Deck"}, testManifest(), testMappings(), dir)
	require.NoError(t, err)

	deck, err := artifact.ReadJSON(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Final Deck", deck["title"])

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDeckBuilder_Options(t *testing.T) {
	builder := NewDeckBuilder(func(o *Options) {
		o.FileName = "board_deck.json"
		o.Author = "analytics-team"
	})

	result, err := builder.Generate(context.Background(), map[string]any{"title": "X"}, nil, nil, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "board_deck.json", filepath.Base(result.OutputPath))

	deck, err := artifact.ReadJSON(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "analytics-team", deck["author"])
}

func TestDeckBuilder_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDeckBuilder().Generate(ctx, map[string]any{"title": "X"}, nil, nil, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
