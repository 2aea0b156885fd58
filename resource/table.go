package resource

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrClosed    = errors.New("injection table closed")
	ErrZeroID    = errors.New("injection id 0 is reserved")
	ErrDuplicate = errors.New("injection id already tracked")
)

// Table tracks live injections of one runtime.
type Table struct {
	entries   map[ID]Injection
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
	now       func() time.Time
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[ID]Injection),
		now:     time.Now,
	}
}

// Insert records a live injection.
func (t *Table) Insert(id ID, pid int, source Source) (Injection, error) {
	if id == 0 {
		return Injection{}, ErrZeroID
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Injection{}, ErrClosed
	}
	if _, ok := t.entries[id]; ok {
		t.mu.Unlock()
		return Injection{}, ErrDuplicate
	}
	inj := Injection{ID: id, Pid: pid, Source: source, Since: t.now()}
	t.entries[id] = inj
	t.mu.Unlock()

	t.notify(Event{Type: EventInjected, Injection: inj})
	return inj, nil
}

// Get returns the injection with id.
func (t *Table) Get(id ID) (Injection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	inj, ok := t.entries[id]
	return inj, ok
}

// Remove drops id and returns (injection, true) if it was tracked.
func (t *Table) Remove(id ID) (Injection, bool) {
	t.mu.Lock()
	inj, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()

	if !ok {
		return Injection{}, false
	}
	t.notify(Event{Type: EventUninjected, Injection: inj})
	return inj, true
}

// Snapshot returns the live injections ordered by id.
func (t *Table) Snapshot() []Injection {
	t.mu.RLock()
	out := make([]Injection, 0, len(t.entries))
	for _, inj := range t.entries {
		out = append(out, inj)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b Injection) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// ByPid returns the live injections in pid ordered by id.
func (t *Table) ByPid(pid int) []Injection {
	all := t.Snapshot()
	out := all[:0]
	for _, inj := range all {
		if inj.Pid == pid {
			out = append(out, inj)
		}
	}
	return out
}

// Len returns the number of live injections.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. Observers are matched by identity, so
// ObserverFunc values cannot be unsubscribed.
func (t *Table) Unsubscribe(o Observer) {
	if _, ok := o.(ObserverFunc); ok {
		return
	}
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if _, ok := obs.(ObserverFunc); ok {
			continue
		}
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close stops accepting new injections. Tracked entries stay readable and
// removable so in-flight uninjects can finish.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnInjectionEvent(e)
	}
}
