package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planexecution"
	"github.com/diagramaut/diagramaut/ent/planrecord"
	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/mcpreg"
)

// step is the shape one entry of PlanRecord.plan_json decodes to.
// depends_on lists the tool_ids of steps that must succeed for this step
// to run — absent/empty means no precondition (§4.8).
type step struct {
	ToolID        string         `json:"tool_id"`
	Arguments     map[string]any `json:"arguments"`
	SchemaVersion string         `json:"schema_version"`
	DependsOn     []string       `json:"depends_on,omitempty"`
}

// RealPlanExecutor implements PlanExecutor by dispatching each plan step
// to the MCP Registry and writing a PlanExecution row per step, skipping
// steps whose declared preconditions failed (§4.8:
// "SKIPPED_DUE_TO_UPSTREAM... other independent steps still run").
//
// Directly grounded on pkg/queue/executor.go's RealSessionExecutor shape:
// one executor struct wiring the DB client and the thing that actually
// runs a unit of work (there: the agent framework; here: the MCP
// Registry).
type RealPlanExecutor struct {
	client   *ent.Client
	registry *mcpreg.Registry

	// Observer, if set, is called around every step transition so a
	// synchronous caller (pkg/orchestrator) can stream plan.step.status
	// events without duplicating this loop's dispatch logic.
	Observer StepObserver
}

// StepObserver is notified of a step's status transitions as Execute runs.
// durationMs is 0 for the "running" notification fired before dispatch.
type StepObserver func(ctx context.Context, planID string, stepIndex int, toolID string, status planexecution.Status, durationMs int64, errMsg string)

// NewRealPlanExecutor builds a plan executor bound to a DB client and the
// process-wide MCP Registry.
func NewRealPlanExecutor(client *ent.Client, registry *mcpreg.Registry) *RealPlanExecutor {
	return &RealPlanExecutor{client: client, registry: registry}
}

func (e *RealPlanExecutor) notify(ctx context.Context, planID string, stepIndex int, toolID string, status planexecution.Status, duration time.Duration, errMsg string) {
	if e.Observer == nil {
		return
	}
	e.Observer(ctx, planID, stepIndex, toolID, status, duration.Milliseconds(), errMsg)
}

// Execute iterates the plan's steps in order (§5 ordering guarantee),
// calling MCPRegistry.Execute per step and writing results progressively.
func (e *RealPlanExecutor) Execute(ctx context.Context, plan *ent.PlanRecord) *Result {
	steps, err := decodeSteps(plan.PlanJSON)
	if err != nil {
		slog.Error("Failed to decode plan steps", "plan_id", plan.ID, "error", err)
		return &Result{Status: planrecord.StatusFailed, Error: err}
	}

	succeeded := make(map[string]bool, len(steps))
	anyFailed := false
	anySkipped := false

	for i, s := range steps {
		select {
		case <-ctx.Done():
			return &Result{Status: planrecord.StatusPartiallyExecuted, Error: ctx.Err()}
		default:
		}

		if blockedBy, skip := upstreamFailed(s.DependsOn, succeeded); skip {
			msg := fmt.Sprintf("upstream step %q did not succeed", blockedBy)
			e.writeExecution(ctx, plan.ID, i, s, nil, "", msg,
				planexecution.StatusSkippedDueToUpstream, 0)
			e.notify(ctx, plan.ID, i, s.ToolID, planexecution.StatusSkippedDueToUpstream, 0, msg)
			anySkipped = true
			continue
		}

		e.notify(ctx, plan.ID, i, s.ToolID, planexecution.StatusRunning, 0, "")

		start := time.Now()
		env, err := e.registry.Execute(ctx, s.ToolID, s.Arguments, plan.ID)
		duration := time.Since(start)

		if err != nil {
			msg := err.Error()
			if apiErr, ok := apierr.As(err); ok {
				msg = apiErr.Message
			}
			e.writeExecution(ctx, plan.ID, i, s, nil, "", msg, planexecution.StatusFailed, duration)
			e.notify(ctx, plan.ID, i, s.ToolID, planexecution.StatusFailed, duration, msg)
			anyFailed = true
			continue
		}

		succeeded[s.ToolID] = true
		e.writeExecution(ctx, plan.ID, i, s, env.Payload, env.AuditID, "", planexecution.StatusCompleted, duration)
		e.notify(ctx, plan.ID, i, s.ToolID, planexecution.StatusCompleted, duration, "")
	}

	switch {
	case anyFailed || anySkipped:
		return &Result{Status: planrecord.StatusPartiallyExecuted}
	default:
		return &Result{Status: planrecord.StatusExecuted}
	}
}

// upstreamFailed reports whether any of dependsOn did not succeed.
func upstreamFailed(dependsOn []string, succeeded map[string]bool) (string, bool) {
	for _, dep := range dependsOn {
		if !succeeded[dep] {
			return dep, true
		}
	}
	return "", false
}

func (e *RealPlanExecutor) writeExecution(ctx context.Context, planID string, index int, s step, output any, auditID, errMsg string, status planexecution.Status, duration time.Duration) {
	id := fmt.Sprintf("%s-step-%d", planID, index)

	create := e.client.PlanExecution.Create().
		SetID(id).
		SetPlanID(planID).
		SetStepIndex(index).
		SetToolID(s.ToolID).
		SetArguments(s.Arguments).
		SetStatus(status).
		SetDurationMs(int(duration.Milliseconds()))

	if output != nil {
		if m, ok := output.(map[string]any); ok {
			create = create.SetOutput(m)
		}
	}
	if auditID != "" {
		create = create.SetAuditID(auditID)
	}
	if errMsg != "" {
		create = create.SetErrorMessage(errMsg)
	}

	if _, err := create.Save(ctx); err != nil {
		slog.Error("Failed to persist plan execution", "plan_id", planID, "step_index", index, "error", err)
	}
}

func decodeSteps(planJSON []map[string]interface{}) ([]step, error) {
	raw, err := json.Marshal(planJSON)
	if err != nil {
		return nil, fmt.Errorf("re-marshaling plan_json: %w", err)
	}
	var steps []step
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("decoding plan steps: %w", err)
	}
	return steps, nil
}
