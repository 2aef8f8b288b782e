package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/event"
)

// EventService manages the generic Event rows pkg/events persists for
// WebSocket catchup.
//
// Grounded on pkg/services/event_service.go.
type EventService struct {
	client *ent.Client
}

// NewEventService creates a new EventService.
func NewEventService(client *ent.Client) *EventService {
	return &EventService{client: client}
}

// GetEventsSince retrieves up to limit events on a channel with an ID
// greater than sinceID, the query pkg/events.EventServiceAdapter wraps
// for catchup.
func (s *EventService) GetEventsSince(ctx context.Context, channel string, sinceID, limit int) ([]*ent.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	events, err := s.client.Event.Query().
		Where(
			event.ChannelEQ(channel),
			event.IDGT(sinceID),
		).
		Order(ent.Asc(event.FieldID)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting events since %d on channel %q: %w", sinceID, channel, err)
	}

	return events, nil
}

// CleanupSessionEvents removes all events for a session, called when a
// session is deleted.
func (s *EventService) CleanupSessionEvents(ctx context.Context, sessionID string) (int, error) {
	count, err := s.client.Event.Delete().
		Where(event.SessionIDEQ(sessionID)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleaning up events for session %q: %w", sessionID, err)
	}
	return count, nil
}

// CleanupOrphanedEvents removes events older than the given TTL,
// intended to run on a periodic schedule so the events table doesn't
// grow unbounded.
func (s *EventService) CleanupOrphanedEvents(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)

	count, err := s.client.Event.Delete().
		Where(event.CreatedAtLT(cutoff)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleaning up orphaned events: %w", err)
	}
	return count, nil
}
