// Package mcpreg implements the MCP Registry (§4.9): a process-wide table
// of in-process tool descriptors the Orchestrator dispatches plan steps
// to.
//
// Grounded on pkg/mcp/executor.go and pkg/mcp/router.go: the same
// normalize-then-split-then-validate call shape used there to route
// "server.tool" names to a real MCP client, applied here to an in-process
// tool table instead of an external subprocess/transport.
package mcpreg

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// Mode classifies what a tool does, per §4.9.
type Mode string

const (
	ModePureTransform Mode = "pure_transform"
	ModeRender        Mode = "render"
	ModeIngest        Mode = "ingest"
	ModeAnalyze       Mode = "analyze"
)

// Handler executes one tool call in-process. It must not call back into
// the Orchestrator or Planner — no recursion (§4.9) — so it receives no
// dependency that would let it enqueue a new plan.
type Handler func(ctx context.Context, args map[string]any) (payload any, auditID string, warnings []string, err error)

// ToolSpec is one registered tool descriptor.
type ToolSpec struct {
	ToolID       string
	Mode         Mode
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema
	Handler      Handler
}

// toolNameRegex mirrors pkg/mcp/router.go's "server.tool" grammar.
var toolNameRegex = regexp.MustCompile(`^([\w][\w-]*)\.([\w][\w-]*)$`)

// Envelope is the normalized result Execute always returns on success
// (§4.9: "{success, audit_id?, payload, warnings[]}").
type Envelope struct {
	Success  bool     `json:"success"`
	AuditID  string   `json:"audit_id,omitempty"`
	Payload  any      `json:"payload"`
	Warnings []string `json:"warnings"`
}

// Registry holds every tool this process can execute.
type Registry struct {
	tools map[string]ToolSpec
}

// NewRegistry builds an empty registry. Register each tool before first
// use; the registry itself is read-only once wired, so no locking is
// needed on the lookup path.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ToolSpec)}
}

// Register adds a tool descriptor, keyed by its normalized "server.tool"
// ID.
func (r *Registry) Register(spec ToolSpec) error {
	if _, _, err := splitToolName(spec.ToolID); err != nil {
		return err
	}
	r.tools[spec.ToolID] = spec
	return nil
}

// ToolIDs returns every registered tool ID, for handing to the Planner as
// its "available_tools" input and for the /mcp/discover catalog.
func (r *Registry) ToolIDs() []string {
	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	return ids
}

// Execute validates args against the tool's input schema, invokes it,
// validates the output, and returns a normalized Envelope. planID is
// recorded for audit linkage only; the registry never dispatches back
// into plan execution itself, which is what makes recursion impossible
// (§4.9: "tools... may not call the orchestrator or planner").
func (r *Registry) Execute(ctx context.Context, toolID string, args map[string]any, planID string) (*Envelope, error) {
	name := normalizeToolName(toolID)

	spec, ok := r.tools[name]
	if !ok {
		return nil, apierr.New(apierr.UpstreamFailed, fmt.Sprintf("unknown tool %q", name))
	}

	if spec.InputSchema != nil {
		if err := spec.InputSchema.Validate(args); err != nil {
			return nil, apierr.New(apierr.UpstreamFailed, fmt.Sprintf("tool %q rejected args: %v", name, err))
		}
	}

	payload, auditID, warnings, err := spec.Handler(ctx, args)
	if err != nil {
		return nil, apierr.New(apierr.UpstreamFailed, fmt.Sprintf("tool %q failed: %v", name, err))
	}

	if spec.OutputSchema != nil {
		if err := spec.OutputSchema.Validate(payload); err != nil {
			return nil, apierr.New(apierr.UpstreamFailed, fmt.Sprintf("tool %q produced invalid output: %v", name, err))
		}
	}

	if warnings == nil {
		warnings = []string{}
	}

	return &Envelope{
		Success:  true,
		AuditID:  auditID,
		Payload:  payload,
		Warnings: warnings,
	}, nil
}

// normalizeToolName converts the "server__tool" separator (used where a
// caller's naming convention forbids dots) to the canonical "server.tool"
// form, mirroring pkg/mcp/router.go's NormalizeToolName.
func normalizeToolName(name string) string {
	if strings.Contains(name, "__") && !strings.Contains(name, ".") {
		return strings.Replace(name, "__", ".", 1)
	}
	return name
}

func splitToolName(name string) (serverID, toolName string, err error) {
	matches := toolNameRegex.FindStringSubmatch(normalizeToolName(name))
	if matches == nil {
		return "", "", fmt.Errorf("invalid tool id %q: must be in 'server.tool' format", name)
	}
	return matches[1], matches[2], nil
}
