// Package mcptools registers the MCP Registry's in-process tool table
// (§4.9): the concrete handlers that plan steps dispatch to, each a thin
// wrapper around one of the Patch Engine, Renderer Router/Adapter,
// IR-to-dialect translators, Styling Agent, or Ingestion Job Queue.
//
// Grounded on the pack's specmcp/internal/tools packages: small,
// single-purpose tool handlers built from one external collaborator each
// and registered by name at startup, rather than one monolithic
// dispatcher switch.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diagramaut/diagramaut/pkg/irstore"
	"github.com/diagramaut/diagramaut/pkg/mcpreg"
	"github.com/diagramaut/diagramaut/pkg/patch"
	"github.com/diagramaut/diagramaut/pkg/render"
	"github.com/diagramaut/diagramaut/pkg/route"
	"github.com/diagramaut/diagramaut/pkg/services"
	"github.com/diagramaut/diagramaut/pkg/styling"
	"github.com/diagramaut/diagramaut/pkg/translate"
)

// Deps collects every collaborator a registered tool handler may need.
// Some are optional: a process that never configured rendering still
// registers chat/ingest tools and simply has no "render."-prefixed entry.
type Deps struct {
	IRStore         *irstore.Store
	Router          *route.Router
	Renderer        *render.Adapter
	StylingAgent    *styling.Agent
	StylingAuditSvc *services.StylingAuditService
	IngestionSvc    *services.IngestionService
}

// Register wires every tool this runtime knows how to execute into the
// registry. Called once at startup, before the HTTP server (and
// therefore any chat turn) starts accepting requests.
func Register(registry *mcpreg.Registry, deps Deps) error {
	tools := []mcpreg.ToolSpec{
		{
			ToolID: "chat.explain",
			Mode:   mcpreg.ModePureTransform,
			Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
				reason, _ := args["reason"].(string)
				if reason == "" {
					reason = "no further detail is available for this turn"
				}
				return map[string]any{"text": explanationFor(reason)}, "", nil, nil
			},
		},
		{
			ToolID: "chat.respond",
			Mode:   mcpreg.ModePureTransform,
			Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
				text, _ := args["text"].(string)
				return map[string]any{"text": text}, "", nil, nil
			},
		},
	}

	if deps.Router != nil && deps.Renderer != nil && deps.IRStore != nil {
		tools = append(tools, mcpreg.ToolSpec{
			ToolID:  "render.generate",
			Mode:    mcpreg.ModeRender,
			Handler: renderHandler(deps),
		})
	}

	if deps.StylingAgent != nil && deps.IRStore != nil && deps.StylingAuditSvc != nil {
		tools = append(tools, mcpreg.ToolSpec{
			ToolID:  "styling.apply",
			Mode:    mcpreg.ModeAnalyze,
			Handler: stylingHandler(deps),
		})
	}

	if deps.IngestionSvc != nil {
		tools = append(tools, mcpreg.ToolSpec{
			ToolID: "ingest.enqueue",
			Mode:   mcpreg.ModeIngest,
			Handler: func(ctx context.Context, args map[string]any) (any, string, []string, error) {
				repoURL, _ := args["repo_url"].(string)
				job, err := deps.IngestionSvc.CreateJob(ctx, repoURL)
				if err != nil {
					return nil, "", nil, err
				}
				return map[string]any{"job_id": job.ID, "status": string(job.Status)}, "", nil, nil
			},
		})
	}

	for _, spec := range tools {
		if err := registry.Register(spec); err != nil {
			return fmt.Errorf("registering tool %q: %w", spec.ToolID, err)
		}
	}
	return nil
}

func explanationFor(reason string) string {
	if reason == "planner_timeout" {
		return "the planner didn't respond in time, so no change was made — try rephrasing your request"
	}
	return reason
}

// renderHandler resolves the renderer for a diagram's current IR,
// translates, and renders it, returning the SVG as the plan step's output
// (surfaced to the chat client as a BlockAction, per
// pkg/orchestrator/orchestrator.go's "render."-prefix handling).
func renderHandler(deps Deps) mcpreg.Handler {
	return func(ctx context.Context, args map[string]any) (any, string, []string, error) {
		diagramID, _ := args["diagram_id"].(string)
		format, _ := args["format"].(string)

		row, err := deps.IRStore.Latest(ctx, diagramID)
		if err != nil {
			return nil, "", nil, err
		}
		doc, err := irstore.ToIR(row)
		if err != nil {
			return nil, "", nil, err
		}

		rendererID, err := deps.Router.Resolve(doc.DiagramType, render.RendererID(format))
		if err != nil {
			return nil, "", nil, err
		}
		dialectText, err := translate.Translate(doc, translate.Dialect(rendererID))
		if err != nil {
			return nil, "", nil, err
		}
		result, err := deps.Renderer.Render(ctx, rendererID, dialectText)
		if err != nil {
			return nil, "", nil, err
		}

		return map[string]any{
			"diagram_id": diagramID,
			"renderer":   string(rendererID),
			"svg":        result.SVG,
			"command":    result.Command,
			"stderr":     result.Stderr,
		}, "", nil, nil
	}
}

// stylingHandler runs the Styling Agent against a diagram's current IR,
// applies any patch ops it returns through the Patch Engine, commits the
// result, and always records a StylingAudit row — even when the agent
// errors out (§4.10).
func stylingHandler(deps Deps) mcpreg.Handler {
	return func(ctx context.Context, args map[string]any) (any, string, []string, error) {
		diagramID, _ := args["diagram_id"].(string)
		suggestion, _ := args["suggestion"].(string)
		mode, _ := args["mode"].(string)
		if mode == "" {
			mode = string(styling.ModeStyleOnly)
		}

		row, err := deps.IRStore.Latest(ctx, diagramID)
		if err != nil {
			return nil, "", nil, err
		}
		parent, err := irstore.ToIR(row)
		if err != nil {
			return nil, "", nil, err
		}

		result, audit, runErr := deps.StylingAgent.Run(ctx, styling.Request{
			CurrentIR:          parent,
			UserEditSuggestion: suggestion,
			Mode:               styling.Mode(mode),
		}, "")

		auditParams := services.CreateAuditParams{
			DiagramID:           diagramID,
			Mode:                mode,
			RendererInputBefore: strPtr(suggestion),
		}
		if audit != nil {
			auditParams.AgentReasoning = strPtr(audit.PatchSummary)
			if len(audit.SanitizedVersion) > 0 {
				var sanitized map[string]interface{}
				if jsonErr := json.Unmarshal(audit.SanitizedVersion, &sanitized); jsonErr == nil {
					auditParams.SanitizedDiagram = sanitized
				}
			}
		}
		if runErr != nil {
			auditParams.ErrorMessage = strPtr(runErr.Error())
		}
		if _, auditErr := deps.StylingAuditSvc.Create(ctx, auditParams); auditErr != nil {
			return nil, "", nil, auditErr
		}

		if runErr != nil {
			return nil, "", nil, runErr
		}
		if result.Error != "" {
			return map[string]any{"error": result.Error, "explanation": result.Explanation}, "", []string{result.Error}, nil
		}

		updated := result.UpdatedIR
		if updated == nil {
			updated, _, err = patch.Apply(parent, result.PatchOps)
			if err != nil {
				return nil, "", nil, err
			}
		} else {
			parentVersion := parent.Version
			updated.ParentVersion = &parentVersion
			updated.DiagramID = parent.DiagramID
		}

		committed, err := deps.IRStore.Put(ctx, updated)
		if err != nil {
			return nil, "", nil, err
		}

		return map[string]any{
			"diagram_id": diagramID,
			"version":    committed.Version,
			"score":      scoreFor(result),
		}, "", nil, nil
	}
}

// scoreFor gives a coarse analysis score for the envelope's
// state.analysis_score (§2, §6): 1.0 when the agent produced a usable
// change, 0.0 when it reported an error it couldn't act on.
func scoreFor(r *styling.Result) float64 {
	if r.Error != "" {
		return 0.0
	}
	return 1.0
}

func strPtr(s string) *string { return &s }
