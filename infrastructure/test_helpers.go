package infrastructure

import (
	"sync"

	"betpool/domain/events"
)

// RecordingEventPublisher keeps every published event in memory
type RecordingEventPublisher struct {
	mu              sync.Mutex
	PublishedEvents []events.Event
	PublishError    error
}

func (r *RecordingEventPublisher) Publish(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PublishError != nil {
		return r.PublishError
	}
	r.PublishedEvents = append(r.PublishedEvents, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *RecordingEventPublisher) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.PublishedEvents))
	copy(out, r.PublishedEvents)
	return out
}
