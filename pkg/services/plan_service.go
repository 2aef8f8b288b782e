package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planexecution"
	"github.com/diagramaut/diagramaut/ent/planrecord"
	"github.com/diagramaut/diagramaut/pkg/planner"
)

// PlanService persists Planner output and exposes its execution history.
//
// Grounded on pkg/services/session_service.go's CreateSession (the
// create-then-enqueue shape), applied to PlanRecord instead of
// AlertSession. CreatePlanRecord exists specifically to satisfy the
// persist-before-execute invariant the chat handler relies on: a plan
// must have a durable row before pkg/queue ever sees it.
type PlanService struct {
	client *ent.Client
}

// NewPlanService creates a new PlanService.
func NewPlanService(client *ent.Client) *PlanService {
	return &PlanService{client: client}
}

// CreatePlanRecord persists a Planner decision in status "created", ready
// to be claimed by pkg/queue. The plan is never executed here.
func (s *PlanService) CreatePlanRecord(ctx context.Context, sessionID string, plan *planner.Plan, metadata map[string]interface{}) (*ent.PlanRecord, error) {
	if sessionID == "" {
		return nil, NewValidationError("session_id", "required")
	}
	if plan == nil || len(plan.Steps) == 0 {
		return nil, NewValidationError("plan", "must contain at least one step")
	}

	planJSON, err := stepsToJSON(plan.Steps)
	if err != nil {
		return nil, fmt.Errorf("encoding plan steps: %w", err)
	}

	builder := s.client.PlanRecord.Create().
		SetID(uuid.NewString()).
		SetSessionID(sessionID).
		SetIntent(plan.Intent).
		SetPlanJSON(planJSON).
		SetStatus(planrecord.StatusCreated)

	if metadata != nil {
		builder = builder.SetPlanMetadata(metadata)
	}

	record, err := builder.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating plan record: %w", err)
	}

	return record, nil
}

// GetPlanRecord retrieves a plan record by ID.
func (s *PlanService) GetPlanRecord(ctx context.Context, planID string) (*ent.PlanRecord, error) {
	record, err := s.client.PlanRecord.Get(ctx, planID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting plan record %q: %w", planID, err)
	}
	return record, nil
}

// ListSessionPlans lists every plan created within a session, most recent
// first.
func (s *PlanService) ListSessionPlans(ctx context.Context, sessionID string) ([]*ent.PlanRecord, error) {
	records, err := s.client.PlanRecord.Query().
		Where(planrecord.SessionIDEQ(sessionID)).
		Order(ent.Desc(planrecord.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing plans for session %q: %w", sessionID, err)
	}
	return records, nil
}

// GetPlanExecutions retrieves every recorded step execution for a plan,
// in step order, so the chat surface can render a step-by-step trace.
func (s *PlanService) GetPlanExecutions(ctx context.Context, planID string) ([]*ent.PlanExecution, error) {
	executions, err := s.client.PlanExecution.Query().
		Where(planexecution.PlanIDEQ(planID)).
		Order(ent.Asc(planexecution.FieldStepIndex)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing executions for plan %q: %w", planID, err)
	}
	return executions, nil
}

// stepsToJSON round-trips Planner steps into the []map[string]interface{}
// shape PlanRecord.plan_json stores, the same idiom pkg/irstore uses for
// IR fields.
func stepsToJSON(steps []planner.Step) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
