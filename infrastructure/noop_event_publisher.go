package infrastructure

import (
	"betpool/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops events. Used when NATS_SERVERS is empty and by
// administrative commands.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs the event type and does nothing else
func (n *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Event dropped, no message bus configured")
	return nil
}
