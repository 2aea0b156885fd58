package resource

import "time"

// ID is an engine-assigned injection id. ID 0 is never live.
type ID uint64

// Source records how an injection was made.
type Source string

const (
	SourceFile   Source = "file"
	SourceBlob   Source = "blob"
	SourceLaunch Source = "launch"
)

// Injection is a live injection tracked by a Table.
type Injection struct {
	Since  time.Time
	Source Source
	ID     ID
	Pid    int
}

// EventType identifies an injection lifecycle notification.
type EventType uint8

const (
	EventInjected EventType = iota
	EventUninjected
)

func (t EventType) String() string {
	switch t {
	case EventInjected:
		return "injected"
	case EventUninjected:
		return "uninjected"
	default:
		return "unknown"
	}
}

// Event represents an injection lifecycle event.
type Event struct {
	Injection Injection
	Type      EventType
}

// Observer receives notifications about injection lifecycle events.
// Observers run synchronously on the goroutine that changed the table and
// must not call back into it.
type Observer interface {
	OnInjectionEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnInjectionEvent calls f(e).
func (f ObserverFunc) OnInjectionEvent(e Event) { f(e) }
