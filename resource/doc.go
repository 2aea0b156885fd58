// Package resource tracks live injections.
//
// Every successful injection yields an engine-assigned id that stays valid
// until it is uninjected. A Table records those ids together with the target
// pid and how the injection was made, so a runtime can report what it still
// owns.
//
//	table := resource.NewTable()
//
//	inj, err := table.Insert(id, pid, resource.SourceFile)
//
//	// Later, when the handle is uninjected
//	inj, ok := table.Remove(id)
//
// # Observers
//
// Register observers to follow the lifecycle:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventInjected:
//	        log.Printf("injection %d into pid %d", e.Injection.ID, e.Injection.Pid)
//	    case resource.EventUninjected:
//	        log.Printf("injection %d gone", e.Injection.ID)
//	    }
//	}))
//
// Ids are not reused by the table; uniqueness is the engine's contract.
// Inserting an id that is already tracked fails with ErrDuplicate.
package resource
