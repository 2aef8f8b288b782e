package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/session"
)

// SessionService manages the durable Session/Message conversation log that
// pkg/session's in-memory ReadModel is hydrated from.
//
// Grounded on pkg/services/session_service.go, with the AlertSession
// lifecycle (stage/agent-execution bootstrapping) dropped in favor of the
// simpler chat-session shape §3 describes: a session is just an ordered
// message log plus a pointer at the diagram lineage it's editing.
type SessionService struct {
	client *ent.Client
}

// NewSessionService creates a new SessionService.
func NewSessionService(client *ent.Client) *SessionService {
	return &SessionService{client: client}
}

// CreateSession creates a new, empty session.
func (s *SessionService) CreateSession(ctx context.Context) (*ent.Session, error) {
	id := uuid.NewString()

	created, err := s.client.Session.Create().
		SetID(id).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return created, nil
}

// GetSession retrieves a session by ID, optionally eager-loading its
// message log.
func (s *SessionService) GetSession(ctx context.Context, sessionID string, withMessages bool) (*ent.Session, error) {
	query := s.client.Session.Query().Where(session.IDEQ(sessionID))

	if withMessages {
		query = query.WithMessages()
	}

	row, err := query.Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session %q: %w", sessionID, err)
	}

	return row, nil
}

// SetActiveDiagram points a session at a new diagram lineage (the chat
// surface called diagram.create or diagram.switch).
func (s *SessionService) SetActiveDiagram(ctx context.Context, sessionID, diagramID string) error {
	err := s.client.Session.UpdateOneID(sessionID).
		SetActiveDiagramID(diagramID).
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("setting active diagram for session %q: %w", sessionID, err)
	}
	return nil
}

// Touch bumps updated_at, used whenever a session receives a new message
// without changing its active diagram.
func (s *SessionService) Touch(ctx context.Context, sessionID string) error {
	err := s.client.Session.UpdateOneID(sessionID).
		SetUpdatedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("touching session %q: %w", sessionID, err)
	}
	return nil
}
