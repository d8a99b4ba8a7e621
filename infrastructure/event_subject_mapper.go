package infrastructure

import (
	"fmt"

	"betpool/domain/events"
)

// EventStreamName is the JetStream stream that carries every betpool subject
const EventStreamName = "betpool_events"

var subjectsByType = map[events.EventType]string{
	events.EventTypeBetCreated:    "bets.created",
	events.EventTypeBetUpdated:    "bets.updated",
	events.EventTypeBetDeleted:    "bets.deleted",
	events.EventTypeBetJoined:     "bets.joined",
	events.EventTypeBetResolved:   "bets.resolved",
	events.EventTypeBetSettled:    "bets.settled",
	events.EventTypeBalanceChange: "wallets.balance_changed",
	events.EventTypeUserCreated:   "users.created",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"bets.created",
		"bets.updated",
		"bets.deleted",
		"bets.joined",
		"bets.resolved",
		"bets.settled",
		"wallets.balance_changed",
		"users.created",
	}
}
