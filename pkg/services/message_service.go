package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/message"
)

// MessageService manages a session's ordered conversation log.
//
// Grounded on pkg/services/message_service.go; the agent-execution/stage
// scoping that message belonged to is dropped since this domain's
// conversation log is flat (one session, one ordered log), but the
// sequence-number assignment idiom is kept identical.
type MessageService struct {
	client *ent.Client
}

// NewMessageService creates a new MessageService.
func NewMessageService(client *ent.Client) *MessageService {
	return &MessageService{client: client}
}

// AppendMessage assigns the next sequence number for sessionID and
// persists the message inside one transaction, so concurrent appends to
// the same session never collide on sequence_number.
func (s *MessageService) AppendMessage(ctx context.Context, sessionID string, role message.Role, content string, responseType string, envelope map[string]interface{}) (*ent.Message, error) {
	if sessionID == "" {
		return nil, NewValidationError("session_id", "required")
	}
	if err := message.RoleValidator(role); err != nil {
		return nil, NewValidationError("role", fmt.Sprintf("invalid role %q: %v", role, err))
	}

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	last, err := tx.Message.Query().
		Where(message.SessionIDEQ(sessionID)).
		Order(ent.Desc(message.FieldSequenceNumber)).
		First(ctx)
	nextSeq := 0
	if err == nil {
		nextSeq = last.SequenceNumber + 1
	} else if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("querying last sequence number: %w", err)
	}

	builder := tx.Message.Create().
		SetID(uuid.NewString()).
		SetSessionID(sessionID).
		SetSequenceNumber(nextSeq).
		SetRole(role).
		SetContent(content)

	if responseType != "" {
		builder = builder.SetResponseType(responseType)
	}
	if envelope != nil {
		builder = builder.SetEnvelope(envelope)
	}

	msg, err := builder.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing message append: %w", err)
	}

	return msg, nil
}

// GetSessionMessages retrieves all messages for a session in order.
func (s *MessageService) GetSessionMessages(ctx context.Context, sessionID string) ([]*ent.Message, error) {
	messages, err := s.client.Message.Query().
		Where(message.SessionIDEQ(sessionID)).
		Order(ent.Asc(message.FieldSequenceNumber)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session messages: %w", err)
	}

	return messages, nil
}

// GetMessagesUpToSequence retrieves messages up to and including a
// specific sequence number, used to rehydrate pkg/session.ReadModel at a
// given point in the log.
func (s *MessageService) GetMessagesUpToSequence(ctx context.Context, sessionID string, sequenceNumber int) ([]*ent.Message, error) {
	messages, err := s.client.Message.Query().
		Where(
			message.SessionIDEQ(sessionID),
			message.SequenceNumberLTE(sequenceNumber),
		).
		Order(ent.Asc(message.FieldSequenceNumber)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting messages up to sequence: %w", err)
	}

	return messages, nil
}
