package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/stylingaudit"
)

// CreateAuditParams is what pkg/styling's Agent.Run output gets mapped
// into before persistence. Exactly one of {RendererInputBefore/After} or
// {SVGBefore/After} should be set, matching the pre_render/post_svg split
// the schema's CHECK constraint enforces (see ent/schema/stylingaudit.go).
type CreateAuditParams struct {
	DiagramID           string
	PlanID              *string
	Mode                string
	UserPrompt          *string
	SanitizedDiagram    map[string]interface{}
	AgentReasoning      *string
	RendererInputBefore *string
	RendererInputAfter  *string
	SVGBefore           *string
	SVGAfter            *string
	DurationMs          int
	ErrorMessage        *string
}

// Create persists one Styling Agent invocation. Every invocation is
// recorded, successful or not (§4.10's "every invocation produces a
// Styling Audit"), so this is called from the tool handler's error path
// too.
func (s *StylingAuditService) Create(ctx context.Context, p CreateAuditParams) (*ent.StylingAudit, error) {
	create := s.client.StylingAudit.Create().
		SetID(uuid.NewString()).
		SetDiagramID(p.DiagramID).
		SetMode(stylingaudit.Mode(p.Mode)).
		SetDurationMs(p.DurationMs)

	if p.PlanID != nil {
		create = create.SetPlanID(*p.PlanID)
	}
	if p.UserPrompt != nil {
		create = create.SetUserPrompt(*p.UserPrompt)
	}
	if p.SanitizedDiagram != nil {
		create = create.SetSanitizedDiagram(p.SanitizedDiagram)
	}
	if p.AgentReasoning != nil {
		create = create.SetAgentReasoning(*p.AgentReasoning)
	}
	if p.RendererInputBefore != nil {
		create = create.SetRendererInputBefore(*p.RendererInputBefore)
	}
	if p.RendererInputAfter != nil {
		create = create.SetRendererInputAfter(*p.RendererInputAfter)
	}
	if p.SVGBefore != nil {
		create = create.SetSvgBefore(*p.SVGBefore)
	}
	if p.SVGAfter != nil {
		create = create.SetSvgAfter(*p.SVGAfter)
	}
	if p.ErrorMessage != nil {
		create = create.SetErrorMessage(*p.ErrorMessage)
	}

	row, err := create.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("persisting styling audit for diagram %q: %w", p.DiagramID, err)
	}
	return row, nil
}

// StylingAuditService reads the immutable StylingAudit trail pkg/styling
// writes. Grounded on PlanService's read-only list/get methods, applied
// to StylingAudit instead of PlanExecution.
type StylingAuditService struct {
	client *ent.Client
}

// NewStylingAuditService creates a new StylingAuditService.
func NewStylingAuditService(client *ent.Client) *StylingAuditService {
	return &StylingAuditService{client: client}
}

// ListForDiagram returns every styling audit recorded against a diagram,
// oldest first.
func (s *StylingAuditService) ListForDiagram(ctx context.Context, diagramID string) ([]*ent.StylingAudit, error) {
	rows, err := s.client.StylingAudit.Query().
		Where(stylingaudit.DiagramIDEQ(diagramID)).
		Order(ent.Asc(stylingaudit.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing styling audits for diagram %q: %w", diagramID, err)
	}
	return rows, nil
}

// Get retrieves a single styling audit by ID.
func (s *StylingAuditService) Get(ctx context.Context, auditID string) (*ent.StylingAudit, error) {
	row, err := s.client.StylingAudit.Get(ctx, auditID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting styling audit %q: %w", auditID, err)
	}
	return row, nil
}
