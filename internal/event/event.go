package event

import "time"

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// Record lifecycle
	MemoryCreated EventType = "memory.created"
	MemoryUpdated EventType = "memory.updated"
	MemoryDeleted EventType = "memory.deleted"

	// Query activity
	MemorySearched EventType = "memory.searched"

	// Service lifecycle
	ServiceReady    EventType = "service.ready"
	ServiceDraining EventType = "service.draining"
	ServiceStopped  EventType = "service.stopped"
)

// Event carries data about a lifecycle occurrence.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}
