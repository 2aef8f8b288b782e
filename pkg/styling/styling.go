// Package styling implements the Styling Agent (§4.10): a pure
// transformation over the current IR driven by one LLM call. It must
// never call MCP tools, never render, and never touch the database
// directly — the only thing it is allowed to do besides call the LLM is
// return data for its caller (the Orchestrator) to apply.
//
// Grounded on pkg/agent/scoring_agent.go's ScoringAgent: a thin agent that
// does nothing but delegate to one call and translate the outcome, no
// tool execution, no DB writes of its own.
package styling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/diagramaut/diagramaut/pkg/llmclient"
	"github.com/diagramaut/diagramaut/pkg/patch"
)

// Mode selects which of the two transformation contracts the agent
// honors (§4.10).
type Mode string

const (
	ModeStyleOnly      Mode = "style_only"
	ModeStructuralEdit Mode = "structural_edit"
)

// Request is one Styling Agent invocation.
type Request struct {
	CurrentIR         *ir.IR
	UserEditSuggestion string
	Mode              Mode
	Constraints       map[string]any
}

// Result is exactly one of PatchOps or UpdatedIR, or Error — never more
// than one, matching §4.10's "(current_ir, ...) → {patch_ops[]} |
// {updated_ir} | {error, explanation}".
type Result struct {
	PatchOps    []patch.Operation
	UpdatedIR   *ir.IR
	Error       string
	Explanation string
}

// Audit is what the caller persists as a StylingAudit row for every
// invocation, successful or not (§4.10: "Every invocation produces a
// Styling Audit").
type Audit struct {
	Mode             Mode
	RawLLMResponse   json.RawMessage
	SanitizedVersion json.RawMessage
	PatchSummary     string
}

// Agent runs the single LLM call and classifies its answer.
type Agent struct {
	llm llmclient.Client
}

// New builds a Styling Agent bound to an LLMClient — its one permitted
// external collaborator.
func New(llm llmclient.Client) *Agent {
	return &Agent{llm: llm}
}

type llmStyleResponse struct {
	PatchOps    []patch.Operation `json:"patch_ops,omitempty"`
	UpdatedIR   *ir.IR            `json:"updated_ir,omitempty"`
	Error       string            `json:"error,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
}

// Run calls the LLM once, interprets its JSON answer, and returns the
// classified Result alongside the Audit record the caller must persist.
func (a *Agent) Run(ctx context.Context, req Request, sessionID string) (*Result, *Audit, error) {
	prompt := buildPrompt(req)

	resp, err := a.llm.Complete(ctx, llmclient.CompleteRequest{
		SessionID: sessionID,
		Prompt:    prompt,
	})
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, &Audit{Mode: req.Mode, PatchSummary: "llm_error: " + apiErr.Message}, err
		}
		return nil, &Audit{Mode: req.Mode, PatchSummary: "llm_error"}, err
	}

	var parsed llmStyleResponse
	if err := json.Unmarshal(resp.Raw, &parsed); err != nil {
		audit := &Audit{Mode: req.Mode, RawLLMResponse: resp.Raw, PatchSummary: "unparseable_response"}
		return &Result{Error: "unparseable_response", Explanation: err.Error()}, audit, nil
	}

	sanitized := sanitizeResponse(parsed)

	result := classify(parsed)
	audit := &Audit{
		Mode:             req.Mode,
		RawLLMResponse:   resp.Raw,
		SanitizedVersion: sanitized,
		PatchSummary:     summarize(result),
	}

	return result, audit, nil
}

func classify(parsed llmStyleResponse) *Result {
	switch {
	case parsed.Error != "":
		return &Result{Error: parsed.Error, Explanation: parsed.Explanation}
	case len(parsed.PatchOps) > 0:
		return &Result{PatchOps: parsed.PatchOps}
	case parsed.UpdatedIR != nil:
		return &Result{UpdatedIR: parsed.UpdatedIR}
	default:
		return &Result{Error: "empty_response", Explanation: "LLM returned neither patch_ops, updated_ir, nor error"}
	}
}

// sanitizeResponse re-marshals the parsed response so the audit's
// "sanitized version" never carries fields the LLM wasn't asked for.
func sanitizeResponse(parsed llmStyleResponse) json.RawMessage {
	data, err := json.Marshal(parsed)
	if err != nil {
		return nil
	}
	return data
}

func summarize(r *Result) string {
	switch {
	case r.Error != "":
		return "error: " + r.Error
	case len(r.PatchOps) > 0:
		return fmt.Sprintf("%d patch op(s)", len(r.PatchOps))
	case r.UpdatedIR != nil:
		return "full IR replacement"
	default:
		return "no-op"
	}
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(
		"mode: %s\nuser_edit_suggestion: %s\ncurrent_ir_diagram_type: %s\nRespond with JSON containing exactly one of patch_ops, updated_ir, or error.",
		req.Mode, req.UserEditSuggestion, req.CurrentIR.DiagramType,
	)
}
