package llmclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp *CompleteResponse
	err  error
	got  CompleteRequest
}

func (f *fakeClient) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) Close() error { return nil }

func TestClient_InterfaceSatisfiedByFake(t *testing.T) {
	var _ Client = (*fakeClient)(nil)

	f := &fakeClient{resp: &CompleteResponse{Raw: json.RawMessage(`{"ok":true}`)}}
	resp, err := f.Complete(context.Background(), CompleteRequest{SessionID: "s1", Prompt: "plan this"})
	require.NoError(t, err)
	assert.Equal(t, "s1", f.got.SessionID)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Raw))
}

func TestJSONCodec_RoundTrips(t *testing.T) {
	c := jsonCodec{}
	req := CompleteRequest{SessionID: "s1", Prompt: "hello", SchemaJSON: json.RawMessage(`{"type":"object"}`)}

	data, err := c.Marshal(&req)
	require.NoError(t, err)

	var out CompleteRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, req.SessionID, out.SessionID)
	assert.Equal(t, req.Prompt, out.Prompt)
	assert.Equal(t, "json", c.Name())
}
