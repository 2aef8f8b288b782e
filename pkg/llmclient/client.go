// Package llmclient implements the LLMClient boundary: the single
// synchronous collaborator the Planner and Styling Agent are allowed to
// call out to (§4.7, §4.10 — both forbid touching MCP or the DB directly;
// the LLM is their one external dependency).
//
// Grounded on pkg/agent/llm_grpc.go: the teacher puts its LLM provider
// behind a gRPC call to a separate worker process rather than linking
// provider SDKs into the main binary. This package keeps that boundary
// shape — same transport, same process split — with JSON-over-gRPC
// message bodies (see codec.go) in place of the teacher's protoc-generated
// proto package.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// CompleteRequest is one schema-constrained completion request. SchemaJSON
// is the JSON Schema the worker must constrain its output to (Planner and
// Styling Agent both require "enforced JSON output", §4.7/§4.10).
type CompleteRequest struct {
	SessionID  string          `json:"session_id"`
	Prompt     string          `json:"prompt"`
	SchemaJSON json.RawMessage `json:"schema_json"`
}

// CompleteResponse is the worker's raw reply. Raw is kept as-is (never
// trusted) so the caller can run it through its own schema validator —
// this client does not itself validate against SchemaJSON.
type CompleteResponse struct {
	Raw          json.RawMessage `json:"raw"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
}

// Client is the interface the Planner and Styling Agent depend on, so
// tests can substitute a fake worker.
type Client interface {
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)
	Close() error
}

// GRPCClient implements Client by calling an external LLM worker process
// over gRPC, mirroring GRPCLLMClient's insecure-localhost-sidecar
// assumption.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient dials the LLM worker. Uses insecure transport — the
// worker is expected to run as a sidecar or on localhost, same assumption
// as the teacher's GRPCLLMClient.
func NewGRPCClient(addr string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client for %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn}, nil
}

// Complete sends one request and blocks for the single reply. Planner and
// Styling Agent are both single-shot ("enforced JSON output" in one
// round-trip), unlike the teacher's streaming chat `Generate`, so this is
// a unary call rather than a server-stream.
func (c *GRPCClient) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	var resp CompleteResponse
	err := c.conn.Invoke(ctx, "/diagramaut.llm.LLMService/Complete", &req, &resp, grpc.CallContentSubtype(jsonCodec{}.Name()))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apierr.New(apierr.LLMTimeout, fmt.Sprintf("LLM call timed out: %v", err))
		}
		return nil, apierr.New(apierr.UpstreamFailed, fmt.Sprintf("LLM call failed: %v", err))
	}
	return &resp, nil
}

// Close releases the gRPC connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func init() {
	// Registering the codec once per process is enough; grpc looks it up
	// by the subtype name passed via grpc.CallContentSubtype.
	registerJSONCodec()
}
