package render

import (
	"context"
	"testing"
	"time"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_UnknownRenderer(t *testing.T) {
	a := NewAdapter(map[RendererID]Config{}, 10, 10)
	_, err := a.Render(context.Background(), RendererMermaid, "flowchart TD\n")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.RenderFailed, e.Kind)
}

func TestRender_TimeoutProducesRenderFailed(t *testing.T) {
	a := NewAdapter(map[RendererID]Config{
		RendererMermaid: {Command: "sleep", Args: []string{"5"}, Timeout: 20 * time.Millisecond},
	}, 10, 10)
	_, err := a.Render(context.Background(), RendererMermaid, "")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.RenderFailed, e.Kind)
}

func TestRender_CommandNotFound(t *testing.T) {
	a := NewAdapter(map[RendererID]Config{
		RendererPlantUML: {Command: "definitely-not-a-real-binary-xyz"},
	}, 10, 10)
	_, err := a.Render(context.Background(), RendererPlantUML, "")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.RenderFailed, e.Kind)
}

func TestValidateNeutralSVG_StripsNonDefaultFill(t *testing.T) {
	svg := `<svg><rect fill="red" stroke="none" width="10"/></svg>`
	out, err := ValidateNeutralSVG(svg)
	require.NoError(t, err)
	assert.NotContains(t, out, `fill="red"`)
}

func TestValidateNeutralSVG_RejectsScriptElement(t *testing.T) {
	svg := `<svg><script>alert(1)</script></svg>`
	_, err := ValidateNeutralSVG(svg)
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.RenderFailed, e.Kind)
}

func TestValidateNeutralSVG_RejectsExcessiveStripping(t *testing.T) {
	svg := `<svg><rect fill="red" stroke="blue" style="opacity:0.5" font="Arial" font-size="12"/></svg>`
	_, err := ValidateNeutralSVG(svg)
	require.Error(t, err)
}

func TestValidateNeutralSVG_PassesCleanSVG(t *testing.T) {
	svg := `<svg><rect width="10" height="10"/></svg>`
	out, err := ValidateNeutralSVG(svg)
	require.NoError(t, err)
	assert.Contains(t, out, "rect")
}
