package resource

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnInjectionEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()
	fixed := time.Unix(1700000000, 0)
	table.now = func() time.Time { return fixed }

	// Insert
	inj, err := table.Insert(7, 1234, SourceFile)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inj.ID != 7 || inj.Pid != 1234 || inj.Source != SourceFile || !inj.Since.Equal(fixed) {
		t.Fatalf("unexpected injection %+v", inj)
	}

	// Get
	got, ok := table.Get(7)
	if !ok || got != inj {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	// Remove
	got, ok = table.Remove(7)
	if !ok || got.ID != 7 {
		t.Fatalf("Remove = %+v, %v", got, ok)
	}

	// Second remove is a miss
	if _, ok := table.Remove(7); ok {
		t.Fatal("second Remove should fail")
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_InsertErrors(t *testing.T) {
	table := NewTable()

	if _, err := table.Insert(0, 1, SourceBlob); !errors.Is(err, ErrZeroID) {
		t.Errorf("Insert(0) = %v, want ErrZeroID", err)
	}

	if _, err := table.Insert(1, 1, SourceBlob); err != nil {
		t.Fatal(err)
	}
	if _, err := table.Insert(1, 2, SourceBlob); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Insert = %v, want ErrDuplicate", err)
	}

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := table.Insert(2, 1, SourceBlob); !errors.Is(err, ErrClosed) {
		t.Errorf("Insert after Close = %v, want ErrClosed", err)
	}
	if _, ok := table.Remove(1); !ok {
		t.Error("Remove after Close should still succeed")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	// Insert should trigger EventInjected
	if _, err := table.Insert(3, 42, SourceLaunch); err != nil {
		t.Fatal(err)
	}
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventInjected {
		t.Fatal("Expected EventInjected")
	}
	if obs.events[0].Injection.ID != 3 {
		t.Fatal("Wrong id in event")
	}

	// Remove should trigger EventUninjected
	table.Remove(3)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventUninjected {
		t.Fatal("Expected EventUninjected")
	}

	// A miss does not notify
	table.Remove(3)
	if len(obs.events) != 2 {
		t.Fatalf("Expected no event for a miss, got %d", len(obs.events))
	}

	// After unsubscribe no more events
	table.Unsubscribe(obs)
	table.Insert(4, 42, SourceFile)
	if len(obs.events) != 2 {
		t.Fatal("Observer still notified after Unsubscribe")
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable()
	var seen []EventType
	fn := ObserverFunc(func(e Event) { seen = append(seen, e.Type) })
	table.Subscribe(fn)
	table.Subscribe(&testObserver{})

	table.Insert(1, 1, SourceFile)
	table.Remove(1)

	// Must not panic on uncomparable observers.
	table.Unsubscribe(fn)
	table.Unsubscribe(&testObserver{})

	if len(seen) != 2 || seen[0] != EventInjected || seen[1] != EventUninjected {
		t.Fatalf("unexpected events %v", seen)
	}
}

func TestTable_SnapshotAndByPid(t *testing.T) {
	table := NewTable()
	table.Insert(30, 2, SourceFile)
	table.Insert(10, 1, SourceBlob)
	table.Insert(20, 2, SourceLaunch)

	snap := table.Snapshot()
	if len(snap) != 3 || snap[0].ID != 10 || snap[1].ID != 20 || snap[2].ID != 30 {
		t.Fatalf("Snapshot not ordered by id: %+v", snap)
	}

	byPid := table.ByPid(2)
	if len(byPid) != 2 || byPid[0].ID != 20 || byPid[1].ID != 30 {
		t.Fatalf("ByPid(2) = %+v", byPid)
	}
	if len(table.ByPid(99)) != 0 {
		t.Fatal("ByPid on unknown pid should be empty")
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable()
	const n = 64

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id ID) {
			defer wg.Done()
			if _, err := table.Insert(id, int(id), SourceFile); err != nil {
				t.Errorf("Insert(%d): %v", id, err)
				return
			}
			if _, ok := table.Remove(id); !ok {
				t.Errorf("Remove(%d) missed", id)
			}
		}(ID(i))
	}
	wg.Wait()

	if table.Len() != 0 {
		t.Fatalf("Len() = %d after concurrent insert/remove", table.Len())
	}
}
