// Package events provides the event bus that upload sessions publish to.
// Embedding surfaces subscribe here instead of being handed ad-hoc refresh
// callbacks, so an unrelated component (a document list, a status line)
// can react to session changes without any shared globals.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	EventSessionStep        EventType = "session_step"        // Session moved between selecting/configuring
	EventFilesChanged       EventType = "files_changed"       // Records added or removed
	EventRecordStatus       EventType = "record_status"       // One record changed upload status
	EventValidationFailed   EventType = "validation_failed"   // Pre-flight validation blocked an upload
	EventSessionComplete    EventType = "session_complete"    // Upload batch finished (fully or partially)
	EventSessionCancelled   EventType = "session_cancelled"   // User abandoned the flow
	EventDocumentsRefreshed EventType = "documents_refreshed" // All files landed; document lists should reload
)

const (
	defaultBuffer = 256
	maxBuffer     = 4096
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// SessionStepEvent reports a step transition in an upload session.
type SessionStepEvent struct {
	BaseEvent
	SessionID string
	Step      string
}

// FilesChangedEvent reports record additions and removals.
type FilesChangedEvent struct {
	BaseEvent
	SessionID string
	FileCount int
}

// RecordStatusEvent reports an upload status change for one file record.
type RecordStatusEvent struct {
	BaseEvent
	SessionID string
	RecordID  string
	FileName  string
	Status    string
	Message   string
}

// ValidationFailedEvent reports a blocked upload attempt.
type ValidationFailedEvent struct {
	BaseEvent
	SessionID string
	Message   string
}

// SessionCompleteEvent reports the aggregate result of an upload batch.
type SessionCompleteEvent struct {
	BaseEvent
	SessionID string
	Succeeded int
	Failed    int
}

// SessionCancelledEvent reports that the user abandoned the session.
type SessionCancelledEvent struct {
	BaseEvent
	SessionID string
}

// DocumentsRefreshedEvent tells listeners that the remote document list
// changed and cached views should reload.
type DocumentsRefreshedEvent struct {
	BaseEvent
	FolderIDs []string
}

// EventBus manages event subscriptions and publishing.
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewEventBus creates a new event bus with the specified buffer size.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	if bufferSize > maxBuffer {
		bufferSize = maxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Publishing never blocks;
// events to full subscriber buffers are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Unsubscribe removes a subscription channel from a specific event type.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from every event type and
// from the all-events list.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// Close shuts down the event bus and closes all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// DroppedEventCount returns the number of events dropped due to full
// subscriber buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
