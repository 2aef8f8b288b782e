package mcpreg

import (
	"context"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

func compileInline(t *testing.T, name, schemaJSON string) *jsonschema.Schema {
	t.Helper()
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource(name, strings.NewReader(schemaJSON)))
	sch, err := c.Compile(name)
	require.NoError(t, err)
	return sch
}

func TestExecute_UnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "repo-ingest.scan", nil, "plan-1")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.UpstreamFailed, e.Kind)
}

func TestExecute_InvalidArgsRejected(t *testing.T) {
	r := NewRegistry()
	schema := compileInline(t, "in.json", `{"type":"object","required":["url"],"properties":{"url":{"type":"string"}}}`)
	require.NoError(t, r.Register(ToolSpec{
		ToolID:      "repo-ingest.scan",
		Mode:        ModeIngest,
		InputSchema: schema,
		Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
			return map[string]any{"ok": true}, "", nil, nil
		},
	}))

	_, err := r.Execute(context.Background(), "repo-ingest.scan", map[string]any{}, "plan-1")
	require.Error(t, err)
}

func TestExecute_NormalizesDoubleUnderscoreName(t *testing.T) {
	r := NewRegistry()
	called := false
	require.NoError(t, r.Register(ToolSpec{
		ToolID: "repo-ingest.scan",
		Mode:   ModeIngest,
		Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
			called = true
			return map[string]any{"ok": true}, "audit-1", nil, nil
		},
	}))

	env, err := r.Execute(context.Background(), "repo-ingest__scan", map[string]any{}, "plan-1")
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, env.Success)
	assert.Equal(t, "audit-1", env.AuditID)
	assert.NotNil(t, env.Warnings)
}

func TestExecute_HandlerErrorWrapped(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(ToolSpec{
		ToolID: "style-agent.apply",
		Mode:   ModePureTransform,
		Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
			return nil, "", nil, assert.AnError
		},
	}))

	_, err := r.Execute(context.Background(), "style-agent.apply", map[string]any{}, "plan-1")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.UpstreamFailed, e.Kind)
}

func TestRegister_RejectsMalformedToolID(t *testing.T) {
	r := NewRegistry()
	err := r.Register(ToolSpec{ToolID: "not-a-valid-id"})
	require.Error(t, err)
}
