// Package planner implements the Planner (§4.7): the single LLM-backed
// pass that decides renderer selection and step ordering for a chat
// turn. Its output is schema-validated before the Orchestrator is allowed
// to act on it — "hand-coded heuristics upstream are forbidden" (§4.7),
// so nothing in this package second-guesses what the LLM decided, only
// whether its answer is well-formed.
//
// Input assembly is grounded on pkg/agent/context.go's ExecutionContext:
// the same "pull together session state, diagram state, and available
// tools into one struct handed to a single LLM call" shape.
package planner

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/llmclient"
)

//go:embed schema/plan.schema.json
var schemaFS embed.FS

var planSchema *jsonschema.Schema

func init() {
	data, err := schemaFS.ReadFile("schema/plan.schema.json")
	if err != nil {
		panic(fmt.Sprintf("planner: embedded schema missing: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("plan.schema.json", bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("planner: invalid embedded schema: %v", err))
	}
	planSchema, err = c.Compile("plan.schema.json")
	if err != nil {
		panic(fmt.Sprintf("planner: failed to compile embedded schema: %v", err))
	}
}

// Step is one ordered unit of work the Orchestrator will dispatch to the
// MCP Registry.
type Step struct {
	ToolID           string         `json:"tool_id"`
	Arguments        map[string]any `json:"arguments"`
	RenderingService string         `json:"rendering_service,omitempty"`
	Format           string         `json:"format,omitempty"`
	LLMDiagram       bool           `json:"llm_diagram,omitempty"`
	SchemaVersion    string         `json:"schema_version"`
}

// Plan is the Planner's validated output, ready to be persisted as a
// PlanRecord (§4.8: "persist a PlanRecord before execution").
type Plan struct {
	Intent string `json:"intent"`
	Steps  []Step `json:"steps"`
}

// Planner runs the single LLM pass and validates its output.
type Planner struct {
	llm llmclient.Client
}

// New builds a Planner bound to an LLMClient.
func New(llm llmclient.Client) *Planner {
	return &Planner{llm: llm}
}

// Plan assembles a prompt, calls the LLM once, and validates the result
// against the plan schema. On schema failure it returns PLAN_INVALID; on
// LLM timeout it returns a deterministic fallback plan consisting of a
// single explain step, mirroring pkg/agent/base_agent.go's
// errors.Is(err, context.DeadlineExceeded) handling.
func (p *Planner) Plan(ctx context.Context, sessionID, userMessage, diagramSummary string, availableTools []string) (*Plan, error) {
	prompt := buildPrompt(userMessage, diagramSummary, availableTools)

	schemaJSON, err := json.Marshal(planSchemaDescription())
	if err != nil {
		return nil, apierr.New(apierr.PlanInvalid, fmt.Sprintf("failed to marshal plan schema: %v", err))
	}

	resp, err := p.llm.Complete(ctx, llmclient.CompleteRequest{
		SessionID:  sessionID,
		Prompt:     prompt,
		SchemaJSON: schemaJSON,
	})
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Kind == apierr.LLMTimeout {
			return fallbackPlan(), nil
		}
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(resp.Raw, &plan); err != nil {
		return nil, apierr.New(apierr.PlanInvalid, fmt.Sprintf("plan response was not valid JSON: %v", err))
	}

	var asMap map[string]any
	if err := json.Unmarshal(resp.Raw, &asMap); err != nil {
		return nil, apierr.New(apierr.PlanInvalid, fmt.Sprintf("plan response was not valid JSON: %v", err))
	}
	if err := planSchema.Validate(asMap); err != nil {
		return nil, apierr.New(apierr.PlanInvalid, fmt.Sprintf("plan failed schema validation: %v", err))
	}

	return &plan, nil
}

// fallbackPlan is returned when the LLM call times out: a single explain
// step that surfaces a clarification text block rather than leaving the
// chat turn unanswered (§4.7).
func fallbackPlan() *Plan {
	return &Plan{
		Intent: "clarify",
		Steps: []Step{
			{
				ToolID:        "chat.explain",
				Arguments:     map[string]any{"reason": "planner_timeout"},
				SchemaVersion: "1",
			},
		},
	}
}

func buildPrompt(userMessage, diagramSummary string, availableTools []string) string {
	return fmt.Sprintf(
		"user_message: %s\ndiagram_summary: %s\navailable_tools: %v\nRespond with JSON matching the plan schema.",
		userMessage, diagramSummary, availableTools,
	)
}

// planSchemaDescription re-exposes the embedded schema bytes for the
// request payload so the LLM worker can enforce it server-side too
// (§4.7: "enforced JSON output").
func planSchemaDescription() json.RawMessage {
	data, _ := schemaFS.ReadFile("schema/plan.schema.json")
	return data
}
