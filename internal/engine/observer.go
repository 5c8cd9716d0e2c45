package engine

import "time"

// EventType represents different lifecycle phases of a session
type EventType string

const (
	EventDispatchStart EventType = "dispatch_start"
	EventRoute         EventType = "route"
	EventFallback      EventType = "fallback"
	EventSyncWarning   EventType = "sync_warning"
	EventDispatchEnd   EventType = "dispatch_end"
	EventAttach        EventType = "attach"
	EventReload        EventType = "reload"
)

// Event represents a lifecycle event in statement execution
type Event struct {
	Type      EventType   // Type of event
	TxID      string      // Execution ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (statement, route, error, summary)
}

// Observer interface for event subscribers
// Observers receive events at major execution phases
type Observer interface {
	OnEvent(event Event)
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, obs := range e.observers {
		if obs == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.obsMu.RLock()
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.obsMu.RUnlock()

	for _, o := range observers {
		o.OnEvent(event)
	}
}
