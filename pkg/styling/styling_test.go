package styling

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/diagramaut/diagramaut/pkg/llmclient"
)

type stubLLM struct {
	raw string
	err error
}

func (s *stubLLM) Complete(ctx context.Context, req llmclient.CompleteRequest) (*llmclient.CompleteResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llmclient.CompleteResponse{Raw: json.RawMessage(s.raw)}, nil
}
func (s *stubLLM) Close() error { return nil }

func sampleRequest() Request {
	return Request{
		CurrentIR: &ir.IR{DiagramID: "d1", DiagramType: ir.DiagramComponent},
		Mode:      ModeStyleOnly,
	}
}

func TestRun_PatchOpsResponse(t *testing.T) {
	a := New(&stubLLM{raw: `{"patch_ops":[{"op":"style","args":{}}]}`})
	result, audit, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.NoError(t, err)
	require.Len(t, result.PatchOps, 1)
	assert.Empty(t, result.UpdatedIR)
	assert.Contains(t, audit.PatchSummary, "1 patch op")
}

func TestRun_UpdatedIRResponse(t *testing.T) {
	a := New(&stubLLM{raw: `{"updated_ir":{"diagram_id":"d1","version":2,"diagram_type":"component"}}`})
	result, _, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.NoError(t, err)
	require.NotNil(t, result.UpdatedIR)
	assert.Equal(t, "d1", result.UpdatedIR.DiagramID)
}

func TestRun_ErrorResponse(t *testing.T) {
	a := New(&stubLLM{raw: `{"error":"cannot_comply","explanation":"no such node"}`})
	result, audit, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "cannot_comply", result.Error)
	assert.Contains(t, audit.PatchSummary, "error")
}

func TestRun_EmptyResponseIsError(t *testing.T) {
	a := New(&stubLLM{raw: `{}`})
	result, _, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "empty_response", result.Error)
}

func TestRun_UnparseableResponse(t *testing.T) {
	a := New(&stubLLM{raw: `not json`})
	result, audit, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "unparseable_response", result.Error)
	assert.Equal(t, "unparseable_response", audit.PatchSummary)
}

func TestRun_LLMErrorPropagates(t *testing.T) {
	a := New(&stubLLM{err: apierr.New(apierr.LLMTimeout, "timed out")})
	_, audit, err := a.Run(context.Background(), sampleRequest(), "s1")
	require.Error(t, err)
	assert.Contains(t, audit.PatchSummary, "llm_error")
}
