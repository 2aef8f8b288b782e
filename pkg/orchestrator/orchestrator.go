package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diagramaut/diagramaut/ent"
	entmessage "github.com/diagramaut/diagramaut/ent/message"
	"github.com/diagramaut/diagramaut/ent/planexecution"
	"github.com/diagramaut/diagramaut/ent/planrecord"
	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/events"
	"github.com/diagramaut/diagramaut/pkg/irstore"
	"github.com/diagramaut/diagramaut/pkg/mcpreg"
	"github.com/diagramaut/diagramaut/pkg/planner"
	"github.com/diagramaut/diagramaut/pkg/queue"
	"github.com/diagramaut/diagramaut/pkg/services"
	"github.com/diagramaut/diagramaut/pkg/session"
)

func rfc3339Now() string {
	return time.Now().Format(time.RFC3339Nano)
}

// DefaultPlannerTimeout bounds the Planner's single LLM call. Grounded on
// pkg/agent/config_resolver.go's DefaultIterationTimeout: each bounded
// external call gets its own context.WithTimeout derived from the parent
// request context, so a stuck call degrades to the deterministic fallback
// instead of hanging the whole turn (spec's cancellation/timeout policy).
const DefaultPlannerTimeout = 20 * time.Second

// Orchestrator is the sole path a chat turn runs through (§4.8). It never
// lets a component invoke a tool directly — steps are always dispatched
// through the MCP Registry — and it never returns an HTTP error for an
// expected failure mode; every expected failure out of HandleChatMessage
// is a valid Envelope.
type Orchestrator struct {
	client *ent.Client

	sessions   *session.Manager
	sessionSvc *services.SessionService
	messageSvc *services.MessageService
	planSvc    *services.PlanService

	planner   *planner.Planner
	registry  *mcpreg.Registry
	irStore   *irstore.Store
	publisher *events.EventPublisher

	// PlannerTimeout bounds the Planner's LLM call. Zero means
	// DefaultPlannerTimeout. llmclient.GRPCClient.Complete has no deadline
	// of its own — it only detects one already carried on ctx — so the
	// Orchestrator is what makes "LLM call times out -> deterministic
	// fallback" actually happen.
	PlannerTimeout time.Duration
}

// New builds an Orchestrator wiring every collaborator a chat turn needs.
func New(
	client *ent.Client,
	sessions *session.Manager,
	sessionSvc *services.SessionService,
	messageSvc *services.MessageService,
	planSvc *services.PlanService,
	p *planner.Planner,
	registry *mcpreg.Registry,
	irStore *irstore.Store,
	publisher *events.EventPublisher,
) *Orchestrator {
	return &Orchestrator{
		client:     client,
		sessions:   sessions,
		sessionSvc: sessionSvc,
		messageSvc: messageSvc,
		planSvc:    planSvc,
		planner:    p,
		registry:   registry,
		irStore:    irStore,
		publisher:  publisher,
	}
}

// HandleChatMessage runs one full chat turn: hydrate, plan, persist,
// execute, assemble. It returns a non-nil Envelope whenever the error is
// nil; a non-nil error (with a nil Envelope) is reserved for
// infrastructure failures the HTTP layer still needs to turn into a 5xx
// (DB unreachable at session lookup, not a plan step failure).
func (o *Orchestrator) HandleChatMessage(ctx context.Context, sessionID, userMessage string) (*Envelope, error) {
	durableSession, err := o.sessionSvc.GetSession(ctx, sessionID, true)
	if err != nil {
		return nil, fmt.Errorf("loading session %q: %w", sessionID, err)
	}

	if existing, err := o.sessions.Get(sessionID); err == nil && existing.Status == session.StatusProcessing {
		return textEnvelope(sessionID,
			"a plan is already in flight for this session; wait for it to finish before sending another message",
			o.currentState(ctx, durableSession)), nil
	}

	activeDiagramID := ""
	if durableSession.ActiveDiagramID != nil {
		activeDiagramID = *durableSession.ActiveDiagramID
	}

	model := o.sessions.Hydrate(sessionID, hydrateMessages(durableSession.Edges.Messages), activeDiagramID)
	model.SetStatus(session.StatusProcessing)
	defer o.sessions.Release(sessionID)

	execCtx, cancel := context.WithCancel(ctx)
	model.SetCancelFunc(cancel)
	defer cancel()

	userMsgRow, err := o.messageSvc.AppendMessage(execCtx, sessionID, entmessage.RoleUser, userMessage, "", nil)
	if err != nil {
		return nil, fmt.Errorf("persisting user message: %w", err)
	}
	model.AddMessage(session.RoleUser, userMessage)

	_ = o.publisher.PublishChatUserMessage(execCtx, sessionID, events.ChatUserMessagePayload{
		Type:      events.EventTypeChatUserMessage,
		SessionID: sessionID,
		MessageID: userMsgRow.ID,
		Content:   userMessage,
		Timestamp: rfc3339Now(),
	})

	diagramSummary := o.summarizeDiagram(execCtx, activeDiagramID)

	plannerTimeout := o.PlannerTimeout
	if plannerTimeout <= 0 {
		plannerTimeout = DefaultPlannerTimeout
	}
	planCtx, cancelPlan := context.WithTimeout(execCtx, plannerTimeout)
	plan, err := o.planner.Plan(planCtx, sessionID, userMessage, diagramSummary, o.registry.ToolIDs())
	cancelPlan()
	if err != nil {
		model.SetStatus(session.StatusIdle)
		return o.planFailureEnvelope(execCtx, durableSession, err), nil
	}

	record, err := o.planSvc.CreatePlanRecord(execCtx, sessionID, plan, map[string]any{"user_message": userMessage})
	if err != nil {
		model.SetStatus(session.StatusIdle)
		return textEnvelope(sessionID, fmt.Sprintf("could not persist plan: %v", err), o.currentState(execCtx, durableSession)), nil
	}

	_ = o.publisher.PublishPlanCreated(execCtx, sessionID, events.PlanCreatedPayload{
		Type:      events.EventTypePlanCreated,
		PlanID:    record.ID,
		SessionID: sessionID,
		Intent:    plan.Intent,
		StepCount: len(plan.Steps),
		Timestamp: rfc3339Now(),
	})

	executor := queue.NewRealPlanExecutor(o.client, o.registry)
	executor.Observer = o.publishStepStatus(sessionID, record.ID)

	result := executor.Execute(execCtx, record)
	model.SetStatus(session.StatusIdle)

	executions, execErr := o.planSvc.GetPlanExecutions(ctx, record.ID)
	if execErr != nil {
		return textEnvelope(sessionID, fmt.Sprintf("plan %s ran but its trace could not be loaded: %v", record.ID, execErr),
			o.currentState(ctx, durableSession)), nil
	}

	durableSession, err = o.sessionSvc.GetSession(ctx, sessionID, false)
	if err != nil {
		return nil, fmt.Errorf("reloading session %q after plan execution: %w", sessionID, err)
	}

	envelope := o.assembleEnvelope(ctx, sessionID, durableSession, result, executions)

	envelopeJSON := envelopeToMap(envelope)
	if _, err := o.messageSvc.AppendMessage(ctx, sessionID, entmessage.RoleAssistant, assistantSummary(envelope), string(envelope.ResponseType), envelopeJSON); err != nil {
		return envelope, nil
	}

	return envelope, nil
}

// CancelSession aborts the plan currently in flight for a session, if
// any is registered on this process (§5: client cancellation only aborts
// steps not yet started; the plan record itself is never deleted).
func (o *Orchestrator) CancelSession(sessionID string) bool {
	return o.sessions.CancelSession(sessionID)
}

// publishStepStatus returns a queue.StepObserver that turns each step
// transition into a plan.step.status event, keeping the live-progress
// wiring out of RealPlanExecutor's own dispatch loop.
func (o *Orchestrator) publishStepStatus(sessionID, planID string) queue.StepObserver {
	return func(ctx context.Context, _ string, stepIndex int, toolID string, status planexecution.Status, durationMs int64, errMsg string) {
		_ = o.publisher.PublishPlanStepStatus(ctx, sessionID, events.PlanStepStatusPayload{
			Type:       events.EventTypePlanStepStatus,
			PlanID:     planID,
			SessionID:  sessionID,
			StepIndex:  stepIndex,
			ToolID:     toolID,
			Status:     string(status),
			DurationMs: int(durationMs),
			Error:      errMsg,
			Timestamp:  rfc3339Now(),
		})
	}
}

// summarizeDiagram renders a short description of the session's active
// diagram for the Planner's prompt (§4.7's ExecutionContext-style input
// assembly), or a fixed "no diagram yet" string when there is none.
func (o *Orchestrator) summarizeDiagram(ctx context.Context, diagramID string) string {
	if diagramID == "" {
		return "no diagram yet"
	}
	latest, err := o.irStore.Latest(ctx, diagramID)
	if err != nil {
		return "no diagram yet"
	}
	return fmt.Sprintf("diagram_id=%s version=%d type=%s nodes=%d edges=%d",
		diagramID, latest.Version, latest.DiagramType, len(latest.Nodes), len(latest.Edges))
}

// currentState builds a State snapshot without re-running a plan, used
// on every early-return path so even a rejected or failed turn still
// reports accurate ir_version/has_diagram data.
func (o *Orchestrator) currentState(ctx context.Context, s *ent.Session) State {
	if s.ActiveDiagramID == nil || *s.ActiveDiagramID == "" {
		return State{HasDiagram: false}
	}
	latest, err := o.irStore.Latest(ctx, *s.ActiveDiagramID)
	if err != nil {
		return State{HasDiagram: false}
	}
	return State{IRVersion: latest.Version, HasDiagram: true}
}

// planFailureEnvelope builds the deterministic text envelope a Planner
// failure falls back to. The Planner itself already falls back to a
// single "explain" step on LLM timeout (§4.7); this path only runs for
// errors the Planner propagates instead of absorbing (schema failure,
// transport failure).
func (o *Orchestrator) planFailureEnvelope(ctx context.Context, s *ent.Session, err error) *Envelope {
	msg := err.Error()
	if apiErr, ok := apierr.As(err); ok {
		msg = apiErr.Message
	}
	return textEnvelope(s.ID, fmt.Sprintf("could not produce a plan: %s", msg), o.currentState(ctx, s))
}

// assembleEnvelope turns one plan's executions into the Unified Response
// Envelope, resolving the session's (possibly just-updated) active
// diagram into a diagram block.
func (o *Orchestrator) assembleEnvelope(ctx context.Context, sessionID string, s *ent.Session, result *queue.Result, executions []*ent.PlanExecution) *Envelope {
	var blocks []Block
	var analysisScore *float64

	for _, exec := range executions {
		switch {
		case exec.Status == planexecution.StatusFailed:
			errMsg := ""
			if exec.ErrorMessage != nil {
				errMsg = *exec.ErrorMessage
			}
			blocks = append(blocks, Block{
				BlockType: BlockText,
				Payload:   map[string]any{"text": errMsg, "tool_id": exec.ToolID},
			})
		case exec.Status == planexecution.StatusSkippedDueToUpstream:
			blocks = append(blocks, Block{
				BlockType: BlockText,
				Payload:   map[string]any{"text": fmt.Sprintf("step %q skipped: upstream dependency did not succeed", exec.ToolID)},
			})
		case strings.HasPrefix(exec.ToolID, "chat."):
			blocks = append(blocks, Block{BlockType: BlockText, Payload: exec.Output})
		case strings.HasPrefix(exec.ToolID, "render."):
			blocks = append(blocks, Block{BlockType: BlockAction, Payload: exec.Output})
		case strings.HasPrefix(exec.ToolID, "styling."):
			blocks = append(blocks, Block{BlockType: BlockAnalysis, Payload: exec.Output})
			if score, ok := exec.Output["score"].(float64); ok {
				analysisScore = &score
			}
		case strings.HasPrefix(exec.ToolID, "ingest."):
			blocks = append(blocks, Block{BlockType: BlockAction, Payload: exec.Output})
		}
	}

	state := o.currentState(ctx, s)
	if state.HasDiagram {
		blocks = append(blocks, Block{
			BlockType: BlockDiagram,
			Payload:   map[string]any{"image_id": *s.ActiveDiagramID, "version": state.IRVersion},
		})
	}
	state.AnalysisScore = analysisScore

	if len(blocks) == 0 {
		blocks = append(blocks, Block{BlockType: BlockText, Payload: map[string]any{"text": "no output was produced for this turn"}})
	}

	return &Envelope{
		ResponseType: classifyResponseType(blocks),
		Blocks:       blocks,
		State:        state,
		Confidence:   confidenceFor(result),
		SessionID:    sessionID,
	}
}

// confidenceFor derives a coarse confidence score from the plan's
// terminal status. Individual node/edge confidence lives on the IR
// itself (§2); this is the envelope-level summary a client can show
// without walking the full diagram.
func confidenceFor(result *queue.Result) float64 {
	switch result.Status {
	case planrecord.StatusExecuted:
		return 1.0
	case planrecord.StatusPartiallyExecuted:
		return 0.5
	default:
		return 0.0
	}
}

// hydrateMessages converts durable Message rows into pkg/session's
// lightweight Message shape for ReadModel hydration.
func hydrateMessages(rows []*ent.Message) []session.Message {
	out := make([]session.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, session.Message{Role: session.MessageRole(m.Role), Content: m.Content})
	}
	return out
}

// assistantSummary picks a short string to store as the assistant
// message's content column; the full envelope is preserved separately in
// Message.envelope.
func assistantSummary(e *Envelope) string {
	for _, b := range e.Blocks {
		if b.BlockType == BlockText {
			if text, ok := b.Payload["text"].(string); ok {
				return text
			}
		}
	}
	return string(e.ResponseType)
}

// envelopeToMap round-trips the envelope through JSON into the
// map[string]interface{} shape Message.envelope stores, the same idiom
// pkg/irstore uses for its own JSON columns.
func envelopeToMap(e *Envelope) map[string]any {
	blocks := make([]map[string]any, len(e.Blocks))
	for i, b := range e.Blocks {
		blocks[i] = map[string]any{"block_type": string(b.BlockType), "payload": b.Payload}
	}
	return map[string]any{
		"response_type": string(e.ResponseType),
		"blocks":        blocks,
		"state": map[string]any{
			"ir_version":     e.State.IRVersion,
			"has_diagram":    e.State.HasDiagram,
			"analysis_score": e.State.AnalysisScore,
		},
		"confidence": e.Confidence,
		"session_id": e.SessionID,
	}
}
